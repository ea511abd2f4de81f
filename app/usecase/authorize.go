package usecase

import "civic-portal/app/domain"

// Authorize gates a resolved identity against a required role set. An empty
// role set admits any authenticated identity. The evaluation order is fixed
// and observable: unauthenticated first, inactive staff second, role
// mismatch last, so an inactive account with a disallowed role reports "not
// active" rather than "forbidden".
func Authorize(identity *domain.Identity, roles ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}

	if identity.IsStaff() && identity.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}

	if len(roles) == 0 {
		return nil
	}

	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return domain.ErrForbidden
}
