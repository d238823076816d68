// Package notify runs the repeating due-task checks: one timer per enabled
// section and one per enabled category override, with sleep suspension and a
// coalesced catch-up pass on resume.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/due"
	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// CheckFunc runs one due-task check for the given scope and delivers a
// notification when anything is due.
type CheckFunc func(scope due.Scope)

type timerEntry struct {
	scope    due.Scope
	interval time.Duration
	lastRun  time.Time
	stop     func()
}

// Scheduler owns the timer set. Timers are keyed by section id, or by
// "<section>-<category>" for overrides; re-creating a key clears the old
// timer first so two timers never overlap on one key.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*timerEntry
	sleeping bool

	clock  Clock
	check  CheckFunc
	logger *slog.Logger
}

func NewScheduler(clock Clock, check CheckFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*timerEntry),
		clock:  clock,
		check:  check,
		logger: logger,
	}
}

// Rebuild tears down every timer and recreates the set from settings. It runs
// at startup and again whenever the settings object is saved; there is no
// incremental diffing.
func (s *Scheduler) Rebuild(settings model.NotificationSettings) {
	s.mu.Lock()
	for key, entry := range s.timers {
		entry.stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()

	for section, config := range settings {
		if config.Enabled {
			s.create(string(section), due.Scope{Section: section}, config.Interval())
		}
		for name, override := range config.Categories {
			if !override.Enabled {
				continue
			}
			key := fmt.Sprintf("%s-%s", section, name)
			s.create(key, due.Scope{Section: section, Category: name}, override.Interval())
		}
	}
}

// Suspend marks the system asleep. Ticks that arrive while suspended are
// dropped, not queued.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	s.sleeping = true
	s.mu.Unlock()
}

// Resume clears the sleep flag and runs one catch-up check for every timer
// that missed at least one full interval. Several missed ticks coalesce into
// a single catch-up run.
func (s *Scheduler) Resume() {
	now := s.clock.Now()

	s.mu.Lock()
	s.sleeping = false
	overdue := make([]due.Scope, 0, len(s.timers))
	for _, entry := range s.timers {
		if now.Sub(entry.lastRun) >= entry.interval {
			entry.lastRun = now
			overdue = append(overdue, entry.scope)
		}
	}
	s.mu.Unlock()

	for _, scope := range overdue {
		s.run(scope)
	}
}

// Stop tears down every timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.timers {
		entry.stop()
		delete(s.timers, key)
	}
}

// create registers a repeating timer under key, replacing any previous timer
// with the same key. The check runs immediately unless the system is
// sleeping, then once per interval.
func (s *Scheduler) create(key string, scope due.Scope, interval time.Duration) {
	s.mu.Lock()
	if old, ok := s.timers[key]; ok {
		old.stop()
		delete(s.timers, key)
	}
	entry := &timerEntry{scope: scope, interval: interval, lastRun: s.clock.Now()}
	entry.stop = s.clock.Every(interval, func() { s.tick(key) })
	s.timers[key] = entry
	sleeping := s.sleeping
	s.mu.Unlock()

	if !sleeping {
		s.run(scope)
	}
}

func (s *Scheduler) tick(key string) {
	s.mu.Lock()
	entry, ok := s.timers[key]
	if !ok || s.sleeping {
		s.mu.Unlock()
		return
	}
	entry.lastRun = s.clock.Now()
	scope := entry.scope
	s.mu.Unlock()

	s.run(scope)
}

// run invokes the bound check, containing panics so one section's failure
// cannot halt the other timers.
func (s *Scheduler) run(scope due.Scope) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("due check panicked",
				"section", scope.Section, "category", scope.Category, "panic", r)
		}
	}()
	s.check(scope)
}
