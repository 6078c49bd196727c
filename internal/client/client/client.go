package client

import (
	"context"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
)

// Client is what the console needs from the server.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) (string, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Raw(ctx context.Context, dbName, sql string) (*api.ExecResponse, error)
	Block(ctx context.Context, req *api.BlockRequest) (*api.ExecResponse, error)
	Schema(ctx context.Context, dbName string) (map[string]*api.TableSchema, error)
	Export(ctx context.Context, dbName, table string) (*api.ExportResponse, error)
	Ping(ctx context.Context) error
}

var _ Client = (*GRPCClient)(nil)
