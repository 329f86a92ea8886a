package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/filter"
	"github.com/nerrf-dev/probed/internal/wire"
)

func TestConfig_UnconfiguredSuppressesEverything(t *testing.T) {
	var c filter.Config
	ok := c.Evaluate(wire.KindWrite, filter.Candidate{Pid: 1234})
	require.False(t, ok)
}

func TestConfig_ExePathInclusion(t *testing.T) {
	exePath := filter.NewSubFilter[string](filter.NotMatch)
	exePath.Set("/system/bin/app_process64", filter.MaskPair{
		EqMask:   wire.KindWrite.Mask(),
		UsedMask: wire.KindWrite.Mask(),
	})
	c := filter.Config{ExePath: exePath}

	require.True(t, c.Evaluate(wire.KindWrite, filter.Candidate{ExePath: "/system/bin/app_process64"}))
	require.False(t, c.Evaluate(wire.KindWrite, filter.Candidate{ExePath: "/system/bin/other"}))
}

func TestConfig_AllConfiguredSubFiltersMustMatch(t *testing.T) {
	pid := filter.NewSubFilter[uint32](filter.NotMatch)
	pid.Set(42, filter.MaskPair{EqMask: wire.KindSignal.Mask(), UsedMask: wire.KindSignal.Mask()})

	comm := filter.NewSubFilter[string](filter.NotMatch)
	comm.Set("evil", filter.MaskPair{EqMask: wire.KindSignal.Mask(), UsedMask: wire.KindSignal.Mask()})

	c := filter.Config{Pid: pid, Comm: comm}

	require.True(t, c.Evaluate(wire.KindSignal, filter.Candidate{Pid: 42, Comm: "evil"}))
	require.False(t, c.Evaluate(wire.KindSignal, filter.Candidate{Pid: 42, Comm: "benign"}))
}

func TestConfig_UnusedKindNeverEmitted(t *testing.T) {
	pid := filter.NewSubFilter[uint32](filter.Match)
	pid.Set(1, filter.MaskPair{EqMask: wire.KindWrite.Mask(), UsedMask: wire.KindWrite.Mask()})
	c := filter.Config{Pid: pid}

	// Signal never opted into this pid entry's UsedMask and no other
	// entry carries the Signal bit, so Signal is suppressed even though
	// the Missing behavior is Match; Write, which the entry opted into,
	// is still emitted.
	require.False(t, c.Evaluate(wire.KindSignal, filter.Candidate{Pid: 1}))
	require.True(t, c.Evaluate(wire.KindWrite, filter.Candidate{Pid: 1}))
}
