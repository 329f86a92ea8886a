// Package rpc implements the TrackerServer contract from internal/pb:
// the RPC surface described in SPEC_FULL.md §6, wired against
// configsvc.Service, an external procutil.Lister, and the shared
// EventDispatcher.
package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nerrf-dev/probed/internal/configsvc"
	"github.com/nerrf-dev/probed/internal/dispatch"
	"github.com/nerrf-dev/probed/internal/log"
	"github.com/nerrf-dev/probed/internal/pb"
	"github.com/nerrf-dev/probed/internal/procutil"
)

// Server implements pb.TrackerServer.
type Server struct {
	configs    *configsvc.Service
	lister     procutil.Lister
	dispatcher *dispatch.Dispatcher
	bootTime   time.Time
}

var _ pb.TrackerServer = (*Server)(nil)

// New builds a Server. lister may be nil, in which case ListProcesses
// reports Unimplemented rather than panicking: this daemon treats the
// process lister as an optional external collaborator.
func New(configs *configsvc.Service, lister procutil.Lister, dispatcher *dispatch.Dispatcher, bootTime time.Time) *Server {
	return &Server{configs: configs, lister: lister, dispatcher: dispatcher, bootTime: bootTime}
}

func (s *Server) CheckServer(context.Context, *pb.CheckServerRequest) (*pb.CheckServerResponse, error) {
	return &pb.CheckServerResponse{}, nil
}

func (s *Server) ListProcesses(ctx context.Context, _ *pb.ListProcessesRequest) (*pb.ListProcessesResponse, error) {
	if s.lister == nil {
		return nil, status.Error(codes.Unimplemented, "no process-listing collaborator configured")
	}

	procs, err := s.lister.ListProcesses(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list processes: %v", err)
	}

	out := make([]pb.ProcessInfo, len(procs))
	for i, p := range procs {
		out[i] = pb.ProcessInfo{Pid: p.Pid, Ppid: p.Ppid, State: p.State, Comm: p.Comm, Cmdline: p.Cmdline}
	}
	return &pb.ListProcessesResponse{Processes: out}, nil
}

func (s *Server) GetConfiguration(context.Context, *pb.GetConfigurationRequest) (*pb.GetConfigurationResponse, error) {
	return &pb.GetConfigurationResponse{Configuration: s.configs.Get()}, nil
}

// SetConfiguration applies the incoming configuration atomically (§7:
// errors below this method are surfaced via its response, and via the
// gRPC status it returns).
func (s *Server) SetConfiguration(_ context.Context, req *pb.SetConfigurationRequest) (*pb.SetConfigurationResponse, error) {
	if err := s.configs.Set(req.Configuration); err != nil {
		return &pb.SetConfigurationResponse{ResponseType: pb.ResponseError}, status.Errorf(codes.FailedPrecondition, "apply configuration: %v", err)
	}
	return &pb.SetConfigurationResponse{ResponseType: pb.ResponseOK}, nil
}

// InitStream subscribes to the shared dispatcher and forwards every
// event until the client disconnects, which merely drops this
// subscription (§5 Cancellation semantics).
func (s *Server) InitStream(_ *pb.InitStreamRequest, stream pb.Tracker_InitStreamServer) error {
	sub := s.dispatcher.Subscribe()
	defer sub.Cancel()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()

		case ev, ok := <-sub.Events:
			if !ok {
				return nil
			}
			wireEvent := pb.FromDecoded(ev, s.bootTime)
			if err := stream.Send(&wireEvent); err != nil {
				return err
			}

		case dropped, ok := <-sub.Lag:
			if !ok {
				continue
			}
			log.L().Warnw("init_stream subscriber lagging", "dropped", dropped)
		}
	}
}
