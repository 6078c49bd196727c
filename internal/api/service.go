package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "playground.Playground"

// Full method names, as seen by interceptors.
const (
	MethodRegister      = "/" + ServiceName + "/Register"
	MethodLogin         = "/" + ServiceName + "/Login"
	MethodCheckUsername = "/" + ServiceName + "/CheckUsername"
	MethodRefreshToken  = "/" + ServiceName + "/RefreshToken"
	MethodRaw           = "/" + ServiceName + "/Raw"
	MethodBlock         = "/" + ServiceName + "/Block"
	MethodSchema        = "/" + ServiceName + "/Schema"
	MethodExport        = "/" + ServiceName + "/Export"
	MethodPing          = "/" + ServiceName + "/Ping"
)

// PlaygroundServer is implemented by the gRPC transport of the server.
type PlaygroundServer interface {
	Register(context.Context, *Credentials) (*RegisterResponse, error)
	Login(context.Context, *Credentials) (*LoginResponse, error)
	CheckUsername(context.Context, *CheckUsernameRequest) (*CheckUsernameResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Raw(context.Context, *RawRequest) (*ExecResponse, error)
	Block(context.Context, *BlockRequest) (*ExecResponse, error)
	Schema(context.Context, *SchemaRequest) (*SchemaResponse, error)
	Export(context.Context, *ExportRequest) (*ExportResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterPlaygroundServer registers srv on s.
func RegisterPlaygroundServer(s grpc.ServiceRegistrar, srv PlaygroundServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](fullMethod string, call func(PlaygroundServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlaygroundServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PlaygroundServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlaygroundServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, PlaygroundServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, PlaygroundServer.Login)},
		{MethodName: "CheckUsername", Handler: unary(MethodCheckUsername, PlaygroundServer.CheckUsername)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, PlaygroundServer.RefreshToken)},
		{MethodName: "Raw", Handler: unary(MethodRaw, PlaygroundServer.Raw)},
		{MethodName: "Block", Handler: unary(MethodBlock, PlaygroundServer.Block)},
		{MethodName: "Schema", Handler: unary(MethodSchema, PlaygroundServer.Schema)},
		{MethodName: "Export", Handler: unary(MethodExport, PlaygroundServer.Export)},
		{MethodName: "Ping", Handler: unary(MethodPing, PlaygroundServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "playground",
}

// PlaygroundClient calls the playground service over cc using the JSON
// codec.
type PlaygroundClient struct {
	cc grpc.ClientConnInterface
}

func NewPlaygroundClient(cc grpc.ClientConnInterface) *PlaygroundClient {
	return &PlaygroundClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *PlaygroundClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PlaygroundClient) Register(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, MethodRegister, in, opts)
}

func (c *PlaygroundClient) Login(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts)
}

func (c *PlaygroundClient) CheckUsername(ctx context.Context, in *CheckUsernameRequest, opts ...grpc.CallOption) (*CheckUsernameResponse, error) {
	return invoke[CheckUsernameResponse](ctx, c, MethodCheckUsername, in, opts)
}

func (c *PlaygroundClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c, MethodRefreshToken, in, opts)
}

func (c *PlaygroundClient) Raw(ctx context.Context, in *RawRequest, opts ...grpc.CallOption) (*ExecResponse, error) {
	return invoke[ExecResponse](ctx, c, MethodRaw, in, opts)
}

func (c *PlaygroundClient) Block(ctx context.Context, in *BlockRequest, opts ...grpc.CallOption) (*ExecResponse, error) {
	return invoke[ExecResponse](ctx, c, MethodBlock, in, opts)
}

func (c *PlaygroundClient) Schema(ctx context.Context, in *SchemaRequest, opts ...grpc.CallOption) (*SchemaResponse, error) {
	return invoke[SchemaResponse](ctx, c, MethodSchema, in, opts)
}

func (c *PlaygroundClient) Export(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c, MethodExport, in, opts)
}

func (c *PlaygroundClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, MethodPing, in, opts)
}
