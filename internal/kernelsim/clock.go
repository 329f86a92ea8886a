package kernelsim

import "golang.org/x/sys/unix"

// Clock supplies the monotonic nanosecond timestamp the real kernel
// programs read via bpf_ktime_get_ns(). Pipeline takes timestamps as
// explicit handler arguments rather than calling a Clock itself, so
// tests can drive enter/exit pairs with arbitrary durations; MonotonicClock
// is what production wiring uses to produce those arguments.
type Clock interface {
	NowNs() uint64
}

// MonotonicClock reads CLOCK_MONOTONIC directly, the same clock source
// the original daemon converts against boot time in its RPC layer.
type MonotonicClock struct{}

func (MonotonicClock) NowNs() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1e9 + uint64(ts.Nsec)
}
