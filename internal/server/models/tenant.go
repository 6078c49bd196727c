package models

// TenantDatabase maps a username to the database provisioned for it.
type TenantDatabase struct {
	ID       int64
	Username string
	DBName   string
}
