package notify

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/due"
	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// fakeClock drives the scheduler deterministically: Advance fires each
// registered timer once per elapsed interval, in chronological order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Every(interval time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{interval: interval, next: c.now.Add(interval), fn: fn}
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.stopped = true
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.next.After(target) {
				continue
			}
			if next == nil || t.next.Before(next.next) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.next
		next.next = next.next.Add(next.interval)
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

type checkRecorder struct {
	mu     sync.Mutex
	scopes []due.Scope
}

func (r *checkRecorder) record(scope due.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
}

func (r *checkRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sectionSettings(section model.Section, value int, unit model.RecurrenceUnit) model.NotificationSettings {
	return model.NotificationSettings{
		section: {
			IntervalSetting: model.IntervalSetting{Enabled: true, Value: value, Unit: unit},
		},
	}
}

func TestSchedulerRunsImmediatelyThenOnInterval(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())
	defer sched.Stop()

	sched.Rebuild(sectionSettings(model.SectionWork, 10, model.UnitMinutes))
	if rec.count() != 1 {
		t.Fatalf("expected immediate run on create, got %d calls", rec.count())
	}

	clock.Advance(25 * time.Minute)
	if rec.count() != 3 {
		t.Fatalf("expected two interval ticks after 25m, got %d calls total", rec.count())
	}
}

func TestSchedulerSleepCatchUpCoalesces(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())
	defer sched.Stop()

	sched.Rebuild(sectionSettings(model.SectionHousehold, 10, model.UnitMinutes))
	if rec.count() != 1 {
		t.Fatalf("expected immediate run, got %d", rec.count())
	}

	// 35 minutes asleep covers three ticks; the wake sweep must run the
	// check exactly once, not three times.
	sched.Suspend()
	clock.Advance(35 * time.Minute)
	if rec.count() != 1 {
		t.Fatalf("ticks during sleep must be dropped, got %d calls", rec.count())
	}

	sched.Resume()
	if rec.count() != 2 {
		t.Fatalf("expected one coalesced catch-up run, got %d calls total", rec.count())
	}
}

func TestSchedulerResumeSkipsFreshTimers(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())
	defer sched.Stop()

	sched.Rebuild(sectionSettings(model.SectionBlog, 1, model.UnitHours))

	sched.Suspend()
	clock.Advance(5 * time.Minute)
	sched.Resume()

	// Less than one interval elapsed, so no catch-up fires.
	if rec.count() != 1 {
		t.Fatalf("resume ran a non-overdue timer, got %d calls", rec.count())
	}
}

func TestSchedulerCategoryOverrideGetsOwnTimer(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())
	defer sched.Stop()

	settings := model.NotificationSettings{
		model.SectionHousehold: {
			IntervalSetting: model.IntervalSetting{Enabled: true, Value: 1, Unit: model.UnitDays},
			Categories: map[string]model.IntervalSetting{
				"Shopping": {Enabled: true, Value: 30, Unit: model.UnitMinutes},
				"Garden":   {Enabled: false, Value: 30, Unit: model.UnitMinutes},
			},
		},
	}
	sched.Rebuild(settings)

	if rec.count() != 2 {
		t.Fatalf("expected section and enabled override to each run once, got %d", rec.count())
	}
	var sawCategory bool
	rec.mu.Lock()
	for _, scope := range rec.scopes {
		if scope.Category == "Shopping" {
			sawCategory = true
		}
		if scope.Category == "Garden" {
			t.Errorf("disabled override must not get a timer")
		}
	}
	rec.mu.Unlock()
	if !sawCategory {
		t.Fatal("category override timer never ran")
	}
}

func TestSchedulerRebuildReplacesTimers(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())
	defer sched.Stop()

	sched.Rebuild(sectionSettings(model.SectionWork, 10, model.UnitMinutes))
	sched.Rebuild(sectionSettings(model.SectionWork, 1, model.UnitHours))
	calls := rec.count() // one immediate run per rebuild

	// The 10-minute timer is gone; only the hourly one may fire.
	clock.Advance(30 * time.Minute)
	if rec.count() != calls {
		t.Fatalf("old timer survived rebuild, got %d calls", rec.count())
	}
	clock.Advance(31 * time.Minute)
	if rec.count() != calls+1 {
		t.Fatalf("expected one hourly tick, got %d calls", rec.count()-calls)
	}
}

func TestSchedulerContainsCallbackPanics(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	check := func(due.Scope) {
		calls++
		panic("boom")
	}
	sched := NewScheduler(clock, check, discardLogger())
	defer sched.Stop()

	sched.Rebuild(sectionSettings(model.SectionWork, 10, model.UnitMinutes))
	clock.Advance(10 * time.Minute)
	if calls != 2 {
		t.Fatalf("panicking callback stopped the timer, got %d calls", calls)
	}
}

func TestSchedulerStopEndsTicks(t *testing.T) {
	clock := newFakeClock()
	rec := &checkRecorder{}
	sched := NewScheduler(clock, rec.record, discardLogger())

	sched.Rebuild(sectionSettings(model.SectionWork, 10, model.UnitMinutes))
	sched.Stop()

	clock.Advance(time.Hour)
	if rec.count() != 1 {
		t.Fatalf("ticks after Stop, got %d calls", rec.count())
	}
}
