package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	citizen := uuid.New()
	svc := &Service{ID: 11, DepartmentID: 4, Name: "Passport Renewal", FeeCents: 500}

	req := NewRequest("01J0000000000000000000TEST", citizen, svc, []byte(`{"notes":"urgent"}`))

	assert.Equal(t, RequestStatusSubmitted, req.Status)
	assert.Equal(t, citizen, req.CitizenID)
	assert.Equal(t, svc.ID, req.ServiceID)
	// Department is frozen at creation.
	assert.Equal(t, svc.DepartmentID, req.DepartmentID)
	assert.Nil(t, req.DecidedAt)
	assert.False(t, req.SubmittedAt.IsZero())
}

func TestRequestDecidableBy(t *testing.T) {
	deptA, deptB := int64(1), int64(2)
	req := &Request{DepartmentID: deptA, Status: RequestStatusSubmitted}

	tests := []struct {
		name  string
		staff *Identity
		want  bool
	}{
		{"nil identity", nil, false},
		{"citizen", &Identity{Role: RoleCitizen}, false},
		{"officer matching department", &Identity{Role: RoleOfficer, DepartmentID: &deptA}, true},
		{"officer wrong department", &Identity{Role: RoleOfficer, DepartmentID: &deptB}, false},
		{"officer without department", &Identity{Role: RoleOfficer}, false},
		{"dept head matching", &Identity{Role: RoleDeptHead, DepartmentID: &deptA}, true},
		{"admin matches any department", &Identity{Role: RoleAdmin}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, req.DecidableBy(tt.staff))
		})
	}
}

func TestRequestCanTransition(t *testing.T) {
	tests := []struct {
		name      string
		from      RequestStatus
		to        RequestStatus
		expectErr bool
	}{
		{"submitted to review", RequestStatusSubmitted, RequestStatusUnderReview, false},
		{"submitted directly approved", RequestStatusSubmitted, RequestStatusApproved, false},
		{"submitted directly rejected", RequestStatusSubmitted, RequestStatusRejected, false},
		{"review to approved", RequestStatusUnderReview, RequestStatusApproved, false},
		{"review to rejected", RequestStatusUnderReview, RequestStatusRejected, false},
		{"approved back to review", RequestStatusApproved, RequestStatusUnderReview, true},
		{"review to submitted", RequestStatusUnderReview, RequestStatusSubmitted, true},
		{"unknown target", RequestStatusSubmitted, RequestStatus("ESCALATED"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Status: tt.from}
			err := req.CanTransition(tt.to)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestStatusPredicates(t *testing.T) {
	assert.True(t, RequestStatusApproved.IsTerminal())
	assert.True(t, RequestStatusRejected.IsTerminal())
	assert.False(t, RequestStatusSubmitted.IsTerminal())
	assert.False(t, RequestStatusUnderReview.IsTerminal())

	require.True(t, RequestStatusApproved.IsValid())
	assert.False(t, RequestStatus("ESCALATED").IsValid())
}
