package activity

import (
	"sync"
	"testing"
	"time"
)

// fakeTime is a manually advanced time source.
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Unix(1_700_000_000, 0)}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestNewClock_StartsAtCreation(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(WithNow(ft.Now))

	if !c.LastTouch().Equal(ft.Now()) {
		t.Errorf("LastTouch() = %v, want %v", c.LastTouch(), ft.Now())
	}
	if got := c.SinceLastTouch(); got != 0 {
		t.Errorf("SinceLastTouch() = %v, want 0", got)
	}
}

func TestClock_TouchResetsElapsed(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(WithNow(ft.Now))

	for i := 0; i < 5; i++ {
		ft.Advance(10 * time.Second)
		c.Touch()
	}

	if got := c.SinceLastTouch(); got != 0 {
		t.Errorf("SinceLastTouch() after touches = %v, want 0", got)
	}
}

func TestClock_ElapsedGrowsWithoutTouch(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(WithNow(ft.Now))

	var prev time.Duration
	for i := 0; i < 70; i++ {
		ft.Advance(time.Second)
		got := c.SinceLastTouch()
		if got < prev {
			t.Fatalf("SinceLastTouch() decreased from %v to %v", prev, got)
		}
		prev = got
	}
	if prev != 70*time.Second {
		t.Errorf("SinceLastTouch() = %v, want 70s", prev)
	}
}

func TestClock_NeverNegative(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(WithNow(ft.Now))

	ft.Advance(-time.Minute)
	if got := c.SinceLastTouch(); got != 0 {
		t.Errorf("SinceLastTouch() with clock skew = %v, want 0", got)
	}
}

func TestClock_RealTime(t *testing.T) {
	c := NewClock()

	for i := 0; i < 100; i++ {
		c.Touch()
	}
	if got := c.SinceLastTouch(); got > time.Second {
		t.Errorf("SinceLastTouch() right after touch = %v, want close to zero", got)
	}
}

func TestClock_ConcurrentAccess(t *testing.T) {
	c := NewClock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Touch()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.SinceLastTouch()
			}
		}()
	}
	wg.Wait()

	if got := c.SinceLastTouch(); got > time.Second {
		t.Errorf("SinceLastTouch() = %v, want close to zero", got)
	}
}
