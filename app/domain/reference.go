package domain

// Department is static reference data consumed, not owned, by the core.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Service is a department-owned service a citizen may apply for.
type Service struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	FeeCents     int64  `json:"fee_cents"`
}
