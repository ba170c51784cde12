package domain

// Well known roles. Roles are free-form strings otherwise.
const (
	RoleAdmin = "admin"
)
