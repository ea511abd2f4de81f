package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/app/utils/logger"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	log, err := logger.New("debug")
	require.NoError(t, err)
	handler := NewHealthHandler(nil, log)

	rec, c := jsonRequest(http.MethodGet, "/health", "")

	require.NoError(t, handler.HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"service":"civic-portal"`)
}
