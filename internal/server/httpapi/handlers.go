package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, api.ErrorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// authorize writes the response and returns false unless the caller owns
// dbName.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, dbName string) bool {
	err := s.backend.Accounts.Authorize(r.Context(), usernameFrom(r.Context()), dbName)
	switch {
	case err == nil:
		return true
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, "access to database "+dbName+" denied")
	default:
		s.logger.Error(r.Context(), "authorize", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return false
}

func writeResult(w http.ResponseWriter, res *sqlexec.Result) {
	if res.HasRows() {
		writeJSON(w, http.StatusOK, res.Set)
		return
	}
	writeJSON(w, http.StatusOK, api.ExecResponse{Message: res.Message, RowsAffected: res.RowsAffected, Database: res.Database})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	dbName, err := s.backend.Accounts.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, api.RegisterResponse{Message: "Registered successfully", DBName: dbName})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(r.Context(), "registration failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if !decode(w, r, &req) {
		return
	}

	res, err := s.backend.Accounts.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, api.LoginResponse{
			Message:      "Login successful",
			Username:     res.Username,
			DBName:       res.DBName,
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
		})
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		s.logger.Error(r.Context(), "login failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := s.backend.Accounts.RefreshToken(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error(r.Context(), "token refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	dbName := r.URL.Query().Get("dbName")
	if dbName == "" {
		writeError(w, http.StatusBadRequest, "dbName is required")
		return
	}
	if !s.authorize(w, r, dbName) {
		return
	}

	schema, err := s.backend.Schema.Describe(r.Context(), dbName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to fetch schema: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	var req api.RawRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DBName == "" {
		writeError(w, http.StatusBadRequest, "dbName is required")
		return
	}
	if !s.authorize(w, r, req.DBName) {
		return
	}
	if target, ok := services.UseTarget(req.SQL); ok && !s.authorize(w, r, target) {
		return
	}

	res, err := s.backend.Raw.Execute(r.Context(), req.SQL, req.DBName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "SQL Error: "+err.Error())
		return
	}
	writeResult(w, res)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req api.BlockRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DBName == "" {
		writeError(w, http.StatusBadRequest, "dbName is required")
		return
	}
	if !s.authorize(w, r, req.DBName) {
		return
	}

	res, err := s.backend.Block.Execute(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Block execution error: "+err.Error())
		return
	}
	writeResult(w, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DBName == "" {
		writeError(w, http.StatusBadRequest, "dbName is required")
		return
	}
	if !s.authorize(w, r, req.DBName) {
		return
	}

	res, err := s.backend.Export.Export(r.Context(), req.DBName, req.Table)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, api.ExportResponse{Key: res.Key, URL: res.URL, Rows: res.Rows})
	case errors.Is(err, common.ErrorExportUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusBadRequest, "Export error: "+err.Error())
	}
}
