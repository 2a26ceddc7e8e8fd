package grpc_control

import (
	"context"
	"fmt"
	"net"

	"nba-stats-explorer/src/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "nbastats.control.v1.Control"

// ControlServer is the server API for the Control service. Messages use the
// well-known Struct and Empty types, so no generated code is needed.
type ControlServer interface {
	ListSeasons(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	LoadSeason(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvictSeason(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Aggregate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&Control_ServiceDesc, srv)
}

// Control_ServiceDesc is the grpc.ServiceDesc for the Control service.
var Control_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSeasons", Handler: listSeasonsHandler},
		{MethodName: "LoadSeason", Handler: structHandler("LoadSeason", ControlServer.LoadSeason)},
		{MethodName: "EvictSeason", Handler: structHandler("EvictSeason", ControlServer.EvictSeason)},
		{MethodName: "Aggregate", Handler: structHandler("Aggregate", ControlServer.Aggregate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nbastats/control/v1/control.proto",
}

// -----------------------------------------------------------------------------

func listSeasonsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ListSeasons(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod("ListSeasons"),
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).ListSeasons(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// structHandler builds the unary handler of a Struct -> Struct method.
func structHandler(name string, call func(ControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ControlServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// ControlClient calls the Control service over an existing connection.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func (c *ControlClient) ListSeasons(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListSeasons"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) LoadSeason(ctx context.Context, season int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "LoadSeason", map[string]interface{}{"season": season}, opts...)
}

func (c *ControlClient) EvictSeason(ctx context.Context, season int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "EvictSeason", map[string]interface{}{"season": season}, opts...)
}

// Aggregate passes teams and positions through as given; nil leaves the
// field out, which selects every code.
func (c *ControlClient) Aggregate(ctx context.Context, season int, teams, positions []string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req := map[string]interface{}{"season": season}
	if teams != nil {
		req["teams"] = strs(teams)
	}
	if positions != nil {
		req["positions"] = strs(positions)
	}
	return c.call(ctx, "Aggregate", req, opts...)
}

func (c *ControlClient) call(ctx context.Context, method string, fields map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// NewGRPCServer registers the control and health services on a new server.
func NewGRPCServer(service *ControlService, log *logger.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))
	RegisterControlServer(grpcServer, service)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return grpcServer
}

// Serve blocks until grpcServer stops.
func Serve(grpcServer *grpc.Server, addr string, log *logger.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}
	log.Info("Starting gRPC Control Server on %s", addr)
	return grpcServer.Serve(lis)
}

func loggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warning("gRPC %s failed: %v", info.FullMethod, err)
		} else {
			log.Debug("gRPC %s ok", info.FullMethod)
		}
		return resp, err
	}
}
