package api

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	DBName  string `json:"dbName"`
}

type LoginResponse struct {
	Message      string `json:"message"`
	Username     string `json:"username"`
	DBName       string `json:"dbName"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CheckUsernameRequest struct {
	Username string `json:"username"`
}

type CheckUsernameResponse struct {
	Exists bool `json:"exists"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RawRequest struct {
	SQL    string `json:"sql"`
	DBName string `json:"dbName"`
}

// ExecResponse is the outcome of a raw or block operation. A row set fills
// Columns and Rows; anything else fills Message.
type ExecResponse struct {
	Message      string   `json:"message,omitempty"`
	RowsAffected int64    `json:"rowsAffected"`
	Database     string   `json:"database,omitempty"`
	Columns      []string `json:"columns,omitempty"`
	Rows         [][]any  `json:"rows,omitempty"`
}

// HasRows reports whether the response carries a row set.
func (r *ExecResponse) HasRows() bool {
	return r != nil && r.Columns != nil
}

type SchemaRequest struct {
	DBName string `json:"dbName"`
}

type SchemaColumn struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsPrimary bool   `json:"isPrimary"`
}

type TableSchema struct {
	Columns []SchemaColumn `json:"columns"`
}

type SchemaResponse struct {
	Tables map[string]*TableSchema `json:"tables"`
}

type ExportRequest struct {
	DBName string `json:"dbName"`
	Table  string `json:"table"`
}

type ExportResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
