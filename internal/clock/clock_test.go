package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealNow(t *testing.T) {
	c := New()
	before := time.Now()
	got := c.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestRealTimerFires(t *testing.T) {
	c := New()
	timer := c.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestFakeAdvanceFiresAfter(t *testing.T) {
	start := time.Unix(1700000000, 0)
	f := NewFake(start)
	ch := f.After(5 * time.Second)

	f.Advance(3 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired too early")
	default:
	}

	f.Advance(2 * time.Second)
	select {
	case got := <-ch:
		assert.Equal(t, start.Add(5*time.Second), got)
	default:
		t.Fatal("did not fire after deadline elapsed")
	}
}

func TestFakeNewTimerResetExtendsDeadline(t *testing.T) {
	start := time.Unix(1700000000, 0)
	f := NewFake(start)
	timer := f.NewTimer(5 * time.Second)

	f.Advance(3 * time.Second)
	timer.Reset(10 * time.Second)
	f.Advance(2 * time.Second) // total 5s since start, but deadline reset to 13s

	select {
	case <-timer.C():
		t.Fatal("fired before reset deadline")
	default:
	}

	f.Advance(10 * time.Second)
	select {
	case <-timer.C():
	default:
		t.Fatal("timer did not fire after advancing past reset deadline")
	}
}

func TestFakeTimerStopPreventsFire(t *testing.T) {
	f := NewFake(time.Unix(1700000000, 0))
	timer := f.NewTimer(1 * time.Second)

	stopped := timer.Stop()
	assert.True(t, stopped)

	f.Advance(5 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFakeNowReflectsAdvance(t *testing.T) {
	start := time.Unix(1700000000, 0)
	f := NewFake(start)
	f.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), f.Now())
}
