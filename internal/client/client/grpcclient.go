package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// playgroundAPI is the generated-style stub, narrowed so tests can fake it.
type playgroundAPI interface {
	Register(ctx context.Context, in *api.Credentials, opts ...grpc.CallOption) (*api.RegisterResponse, error)
	Login(ctx context.Context, in *api.Credentials, opts ...grpc.CallOption) (*api.LoginResponse, error)
	CheckUsername(ctx context.Context, in *api.CheckUsernameRequest, opts ...grpc.CallOption) (*api.CheckUsernameResponse, error)
	RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.TokenResponse, error)
	Raw(ctx context.Context, in *api.RawRequest, opts ...grpc.CallOption) (*api.ExecResponse, error)
	Block(ctx context.Context, in *api.BlockRequest, opts ...grpc.CallOption) (*api.ExecResponse, error)
	Schema(ctx context.Context, in *api.SchemaRequest, opts ...grpc.CallOption) (*api.SchemaResponse, error)
	Export(ctx context.Context, in *api.ExportRequest, opts ...grpc.CallOption) (*api.ExportResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
}

type GRPCClient struct {
	endpointURL  string
	conn         *grpc.ClientConn
	client       playgroundAPI
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)

	if err != nil {

		st, ok := status.FromError(err)
		if !ok {
			return err
		}

		if st.Code() != codes.Unauthenticated {
			return err
		}
		if st.Message() != common.ErrTokenExpired.Error() {
			return err
		}

		if s.refreshToken == "" {
			return err
		}

		tokens, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: s.refreshToken})
		if err != nil {
			return err
		}

		s.accessToken = tokens.AccessToken
		s.refreshToken = tokens.RefreshToken

		ctx = withAccessToken(ctx, s.accessToken)
		return invoker(ctx, method, req, reply, cc, opts...)

	}

	return err
}

func NewPlaygroundClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewPlaygroundClient(conn)
	return nil
}

// Register creates the account and returns the personal database name.
func (s *GRPCClient) Register(ctx context.Context, username, password string) (string, error) {

	resp, err := s.client.Register(ctx, &api.Credentials{Username: username, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.DBName, nil

}

func (s *GRPCClient) CheckUsername(ctx context.Context, username string) (bool, error) {

	resp, err := s.client.CheckUsername(ctx, &api.CheckUsernameRequest{Username: username})
	if err != nil {
		return false, s.mapError(err)
	}

	return resp.Exists, nil
}

// Login authenticates and keeps the issued tokens for later calls.
func (s *GRPCClient) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {

	resp, err := s.client.Login(ctx, &api.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken

	return resp, nil

}

func (s *GRPCClient) Raw(ctx context.Context, dbName, sql string) (*api.ExecResponse, error) {
	resp, err := s.client.Raw(ctx, &api.RawRequest{SQL: sql, DBName: dbName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Block(ctx context.Context, req *api.BlockRequest) (*api.ExecResponse, error) {
	resp, err := s.client.Block(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Schema(ctx context.Context, dbName string) (map[string]*api.TableSchema, error) {
	resp, err := s.client.Schema(ctx, &api.SchemaRequest{DBName: dbName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Tables, nil
}

func (s *GRPCClient) Export(ctx context.Context, dbName, table string) (*api.ExportResponse, error) {
	resp, err := s.client.Export(ctx, &api.ExportRequest{DBName: dbName, Table: table})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	default:
		return &RemoteError{Code: st.Code(), Message: st.Message()}
	}
}
