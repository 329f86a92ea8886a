package pb

import (
	"context"

	"google.golang.org/grpc"
)

// TrackerServer is the server-side contract for the RPC surface in §6.
// index_symbols / search_symbols / get_symbol_offset are explicitly
// delegated to an external symbol collaborator and are
// not part of this service.
type TrackerServer interface {
	CheckServer(context.Context, *CheckServerRequest) (*CheckServerResponse, error)
	ListProcesses(context.Context, *ListProcessesRequest) (*ListProcessesResponse, error)
	GetConfiguration(context.Context, *GetConfigurationRequest) (*GetConfigurationResponse, error)
	SetConfiguration(context.Context, *SetConfigurationRequest) (*SetConfigurationResponse, error)
	InitStream(*InitStreamRequest, Tracker_InitStreamServer) error
}

// Tracker_InitStreamServer is the server-side stream handle for
// init_stream, analogous to what protoc-gen-go-grpc would generate.
type Tracker_InitStreamServer interface {
	Send(*Event) error
	grpc.ServerStream
}

type trackerInitStreamServer struct {
	grpc.ServerStream
}

func (s *trackerInitStreamServer) Send(e *Event) error {
	return s.ServerStream.SendMsg(e)
}

func _Tracker_CheckServer_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckServerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerServer).CheckServer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nerrf.Tracker/CheckServer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackerServer).CheckServer(ctx, req.(*CheckServerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Tracker_ListProcesses_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListProcessesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerServer).ListProcesses(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nerrf.Tracker/ListProcesses"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackerServer).ListProcesses(ctx, req.(*ListProcessesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Tracker_GetConfiguration_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetConfigurationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerServer).GetConfiguration(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nerrf.Tracker/GetConfiguration"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackerServer).GetConfiguration(ctx, req.(*GetConfigurationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Tracker_SetConfiguration_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetConfigurationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerServer).SetConfiguration(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nerrf.Tracker/SetConfiguration"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackerServer).SetConfiguration(ctx, req.(*SetConfigurationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Tracker_InitStream_Handler(srv any, stream grpc.ServerStream) error {
	in := new(InitStreamRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TrackerServer).InitStream(in, &trackerInitStreamServer{stream})
}

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would generate for the Tracker service. Registered via
// grpc.Server.RegisterService in cmd/probed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "nerrf.Tracker",
	HandlerType: (*TrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckServer", Handler: _Tracker_CheckServer_Handler},
		{MethodName: "ListProcesses", Handler: _Tracker_ListProcesses_Handler},
		{MethodName: "GetConfiguration", Handler: _Tracker_GetConfiguration_Handler},
		{MethodName: "SetConfiguration", Handler: _Tracker_SetConfiguration_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "InitStream", Handler: _Tracker_InitStream_Handler, ServerStreams: true},
	},
	Metadata: "nerrf/tracker.proto",
}
