package fetch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastTriggerFires(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			fired.Add(1)
			last.Store(n)
		})
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncer_SpacedTriggersEachFire(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	d.Trigger(func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(2), fired.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Triggers after Stop are ignored.
	d.Trigger(func() { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
