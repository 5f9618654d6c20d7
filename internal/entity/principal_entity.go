package entity

import "github.com/google/uuid"

const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
	RoleService   = "service"
)

// Principal is the authenticated caller as read from the bearer token.
type Principal struct {
	UserId uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsTrusted covers admins and the internal service accounts of the job and
// profile services.
func (p Principal) IsTrusted() bool {
	return p.Role == RoleAdmin || p.Role == RoleService
}
