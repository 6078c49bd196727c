package grpc

import (
	"context"
	"errors"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to status codes. Errors that match no
// sentinel get fallback, which is InvalidArgument for statement errors
// coming from the database and Internal elsewhere.
func toStatus(err error, fallback codes.Code) error {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorExportUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case fallback == codes.Internal:
		return status.Error(codes.Internal, "internal error")
	default:
		return status.Error(fallback, err.Error())
	}
}

func execResponse(res *sqlexec.Result) *api.ExecResponse {
	out := &api.ExecResponse{Message: res.Message, RowsAffected: res.RowsAffected, Database: res.Database}
	if res.HasRows() {
		out.Columns = res.Set.Columns
		out.Rows = res.Set.Rows
		if out.Rows == nil {
			out.Rows = [][]any{}
		}
	}
	return out
}

// authorize checks that the caller owns dbName. Every tenant call must
// name its database, otherwise it would run in the control database.
func (s *GRPCServer) authorize(ctx context.Context, dbName string) error {
	if dbName == "" {
		return status.Error(codes.InvalidArgument, "dbName is required")
	}
	if err := s.backend.Accounts.Authorize(ctx, usernameFrom(ctx), dbName); err != nil {
		return toStatus(err, codes.Internal)
	}
	return nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.Credentials) (*api.RegisterResponse, error) {
	dbName, err := s.backend.Accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, status.Error(codes.AlreadyExists, "username already exists")
		}
		s.logger.Error(ctx, "registration failed", "username", req.Username, "error", err)
		return nil, toStatus(err, codes.Internal)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username)
	return &api.RegisterResponse{Message: "Registered successfully", DBName: dbName}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.Credentials) (*api.LoginResponse, error) {
	res, err := s.backend.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "invalid username or password")
		}
		s.logger.Error(ctx, "login failed", "username", req.Username, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &api.LoginResponse{
		Message:      "Login successful",
		Username:     res.Username,
		DBName:       res.DBName,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) CheckUsername(ctx context.Context, req *api.CheckUsernameRequest) (*api.CheckUsernameResponse, error) {
	exists, err := s.backend.Accounts.CheckUsername(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err, codes.Internal)
	}
	return &api.CheckUsernameResponse{Exists: exists}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	pair, err := s.backend.Accounts.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err, codes.Internal)
	}
	return &api.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Raw(ctx context.Context, req *api.RawRequest) (*api.ExecResponse, error) {
	if err := s.authorize(ctx, req.DBName); err != nil {
		return nil, err
	}
	// the console sends back whatever a USE reports, so only owned
	// databases may be selected
	if target, ok := services.UseTarget(req.SQL); ok {
		if err := s.authorize(ctx, target); err != nil {
			return nil, err
		}
	}
	res, err := s.backend.Raw.Execute(ctx, req.SQL, req.DBName)
	if err != nil {
		return nil, toStatus(err, codes.InvalidArgument)
	}
	return execResponse(res), nil
}

func (s *GRPCServer) Block(ctx context.Context, req *api.BlockRequest) (*api.ExecResponse, error) {
	if err := s.authorize(ctx, req.DBName); err != nil {
		return nil, err
	}
	res, err := s.backend.Block.Execute(ctx, req)
	if err != nil {
		return nil, toStatus(err, codes.InvalidArgument)
	}
	return execResponse(res), nil
}

func (s *GRPCServer) Schema(ctx context.Context, req *api.SchemaRequest) (*api.SchemaResponse, error) {
	if err := s.authorize(ctx, req.DBName); err != nil {
		return nil, err
	}
	schema, err := s.backend.Schema.Describe(ctx, req.DBName)
	if err != nil {
		return nil, toStatus(err, codes.InvalidArgument)
	}
	return &api.SchemaResponse{Tables: schema}, nil
}

func (s *GRPCServer) Export(ctx context.Context, req *api.ExportRequest) (*api.ExportResponse, error) {
	if err := s.authorize(ctx, req.DBName); err != nil {
		return nil, err
	}
	res, err := s.backend.Export.Export(ctx, req.DBName, req.Table)
	if err != nil {
		return nil, toStatus(err, codes.InvalidArgument)
	}
	return &api.ExportResponse{Key: res.Key, URL: res.URL, Rows: res.Rows}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}
