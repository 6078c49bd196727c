package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const UsernameKey ctxKey = "username"

// protected lists the methods that need an access token.
var protected = map[string]bool{
	api.MethodRaw:    true,
	api.MethodBlock:  true,
	api.MethodSchema: true,
	api.MethodExport: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protected[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	username, err := auth.GetUsernameFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	ctx = context.WithValue(ctx, UsernameKey, username)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	logger := s.logger.With("request_id", uuid.NewString(), "method", info.FullMethod)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	d := time.Since(start)
	s.metrics.ObserveGRPC(info.FullMethod, code.String(), d)

	if err != nil && code == codes.Internal {
		logger.Error(ctx, "request failed", "code", code.String(), "duration", d, "error", err)
	} else {
		logger.Info(ctx, "request", "code", code.String(), "duration", d)
	}

	return resp, err
}

func usernameFrom(ctx context.Context) string {
	v, _ := ctx.Value(UsernameKey).(string)
	return v
}
