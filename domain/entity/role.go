package entity

// Role is the account role carried into the access token's role claim. It is
// typed internally so handler and middleware checks cannot drift from the
// claim values, but it serializes as the plain string the platform has always
// used ("User", "Admin", ...). Unknown stored values pass through unchanged so
// legacy records keep authenticating with whatever role they carry.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSupervisor Role = "Supervisor"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
