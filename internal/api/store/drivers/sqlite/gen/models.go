package gen

import (
	"database/sql"
	"time"
)

type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Roles              string
	MfaMethod          string
	MfaSecret          sql.NullString
	MfaPhoneNumber     sql.NullString
	LoginAttempts      int64
	LastLoginAttemptAt sql.NullTime
	TempTokenID        sql.NullString
	AuthTokenID        sql.NullString
	AccessConfirmedAt  sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          sql.NullTime
}

type BackupCode struct {
	UserID    string
	CodeHash  string
	CreatedAt time.Time
}

type AuditEntry struct {
	ID                  string
	Activity            string
	Type                string
	ObjectID            sql.NullString
	ObjectType          sql.NullString
	ObjectBefore        sql.NullString
	ObjectAfter         sql.NullString
	RequestMethod       string
	RequestUrl          string
	RouteNormalizedPath string
	RoutePrefix         string
	UserID              sql.NullString
	CreatedAt           time.Time
}
