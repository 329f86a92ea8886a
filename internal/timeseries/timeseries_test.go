package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferRetainsOldestFirstOrder(t *testing.T) {
	b := New()
	for i := uint64(1); i <= 5; i++ {
		b.Push(i)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, b.Samples())
}

func TestBufferEvictsOldestPastCapacity(t *testing.T) {
	b := New()
	for i := uint64(0); i < uint64(Capacity())+10; i++ {
		b.Push(i)
	}
	samples := b.Samples()
	assert.Len(t, samples, Capacity())
	assert.Equal(t, uint64(10), samples[0])
	assert.Equal(t, uint64(Capacity())+9, samples[len(samples)-1])
}

func TestSetTracksPerFeatureBuffers(t *testing.T) {
	s := NewSet()
	s.Record("write", 1)
	s.Record("write", 2)
	s.Record("blocking", 9)

	snap := s.Snapshot()
	assert.Equal(t, []uint64{1, 2}, snap["write"])
	assert.Equal(t, []uint64{9}, snap["blocking"])
}
