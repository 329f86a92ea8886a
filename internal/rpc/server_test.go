package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/configsvc"
	"github.com/nerrf-dev/probed/internal/confstore"
	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/dispatch"
	"github.com/nerrf-dev/probed/internal/kernelsim"
	"github.com/nerrf-dev/probed/internal/pb"
	"github.com/nerrf-dev/probed/internal/procutil"
	"github.com/nerrf-dev/probed/internal/wire"
)

func newTestServer(t *testing.T) (*Server, *dispatch.Dispatcher) {
	svc, err := configsvc.New(confstore.NewMemStore(), nil, map[string]*kernelsim.Pipeline{})
	require.NoError(t, err)
	d := dispatch.New(8)
	return New(svc, nil, d, time.Unix(0, 0)), d
}

func TestCheckServer(t *testing.T) {
	s, _ := newTestServer(t)
	resp, err := s.CheckServer(context.Background(), &pb.CheckServerRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestListProcessesWithoutListerIsUnimplemented(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.ListProcesses(context.Background(), &pb.ListProcessesRequest{})
	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

type fakeLister struct{ procs []procutil.Process }

func (f *fakeLister) ListProcesses(context.Context) ([]procutil.Process, error) { return f.procs, nil }

func TestListProcessesProjectsLister(t *testing.T) {
	svc, err := configsvc.New(confstore.NewMemStore(), nil, map[string]*kernelsim.Pipeline{})
	require.NoError(t, err)
	s := New(svc, &fakeLister{procs: []procutil.Process{{Pid: 1, Comm: "init"}}}, dispatch.New(4), time.Now())

	resp, err := s.ListProcesses(context.Background(), &pb.ListProcessesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Processes, 1)
	assert.Equal(t, uint32(1), resp.Processes[0].Pid)
}

func TestSetThenGetConfigurationRoundTrips(t *testing.T) {
	s, _ := newTestServer(t)

	cfg := config.Default()
	cfg.GlobalThresholds.BlockingMinDurationNs = 7
	setResp, err := s.SetConfiguration(context.Background(), &pb.SetConfigurationRequest{Configuration: cfg})
	require.NoError(t, err)
	assert.Equal(t, pb.ResponseOK, setResp.ResponseType)

	getResp, err := s.GetConfiguration(context.Background(), &pb.GetConfigurationRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), getResp.Configuration.GlobalThresholds.BlockingMinDurationNs)
}

type fakeStream struct {
	ctx  context.Context
	sent []*pb.Event
}

func (f *fakeStream) SetHeader(metadata.MD) error { return nil }
func (f *fakeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeStream) SetTrailer(metadata.MD)       {}
func (f *fakeStream) Context() context.Context     { return f.ctx }
func (f *fakeStream) RecvMsg(m any) error          { return nil }

func (f *fakeStream) SendMsg(m any) error {
	f.sent = append(f.sent, m.(*pb.Event))
	return nil
}

func (f *fakeStream) Send(e *pb.Event) error { return f.SendMsg(e) }

func TestInitStreamForwardsPublishedEvents(t *testing.T) {
	s, d := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	stream := &fakeStream{ctx: ctx}

	done := make(chan error, 1)
	go func() { done <- s.InitStream(&pb.InitStreamRequest{}, stream) }()

	// Give the subscription time to register before publishing.
	assert.Eventually(t, func() bool { return d.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	d.Publish(decode.Decoded{Kind: wire.KindWrite, Write: &wire.Write{Bytes: 7}})

	assert.Eventually(t, func() bool { return len(stream.sent) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(7), stream.sent[0].Log.Write.Bytes)

	cancel()
	require.Error(t, <-done)
	assert.Equal(t, 0, d.SubscriberCount())
}
