package pb

import "github.com/nerrf-dev/probed/internal/config"

// CheckServerRequest and CheckServerResponse are both empty; the method
// exists purely as a liveness probe (§6).
type CheckServerRequest struct{}
type CheckServerResponse struct{}

// ListProcessesRequest is empty; ListProcessesResponse carries a
// snapshot from the external process-listing collaborator
// (internal/procutil).
type ListProcessesRequest struct{}

type ProcessInfo struct {
	Pid     uint32 `json:"pid"`
	Ppid    uint32 `json:"ppid"`
	State   string `json:"state"`
	Comm    string `json:"comm"`
	Cmdline string `json:"cmdline"`
}

type ListProcessesResponse struct {
	Processes []ProcessInfo `json:"processes"`
}

// GetConfigurationRequest is empty; GetConfigurationResponse carries
// the last persisted configuration verbatim — config.Configuration
// already carries the json tags this wire format needs, so it is
// reused directly rather than mirrored into a second type.
type GetConfigurationRequest struct{}

type GetConfigurationResponse struct {
	Configuration config.Configuration `json:"configuration"`
}

type SetConfigurationRequest struct {
	Configuration config.Configuration `json:"configuration"`
}

// ResponseType mirrors the int response_type field from §6; it does
// not attempt to reproduce a specific gRPC status mapping beyond what
// internal/rpc already returns via the status package.
type ResponseType int32

const (
	ResponseOK ResponseType = iota
	ResponseError
)

type SetConfigurationResponse struct {
	ResponseType ResponseType `json:"response_type"`
}

// InitStreamRequest is empty; the response is the Event stream itself.
type InitStreamRequest struct{}
