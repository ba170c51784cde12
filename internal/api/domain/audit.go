package domain

import "time"

// AuditType categorises audit entries.
type AuditType string

const (
	AuditTypeSecurity AuditType = "security"
	AuditTypeAdmin    AuditType = "admin"
	AuditTypeUser     AuditType = "user"
)

// AuditEntry is an immutable record of a state changing request.
type AuditEntry struct {
	ID           string
	Activity     string
	Type         AuditType
	ObjectID     string
	ObjectType   string
	ObjectBefore map[string]any // only the watched fields that changed
	ObjectAfter  map[string]any

	RequestMethod       string
	RequestURL          string
	RouteNormalizedPath string // e.g. /1/users/:userId
	RoutePrefix         string // e.g. /1/users
	UserID              string // actor

	CreatedAt time.Time
}

// AuditFilter narrows audit listings. Zero values are ignored.
type AuditFilter struct {
	ObjectID string
	Type     AuditType
	UserID   string
	Limit    int
	Offset   int
}
