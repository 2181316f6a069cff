// Package scheduler runs named background jobs on a fixed cadence or once on
// demand. Invocation is at-least-once: overlapping runs of the same job are
// allowed and jobs must tolerate them.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"avrexpense/internal/logger"
)

// Func is the unit of work a job runs. ctx is cancelled when the scheduler stops.
type Func func(ctx context.Context)

// Scheduler owns the goroutines of every job it starts.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.SugaredLogger

	mu       sync.Mutex
	periodic map[string]context.CancelFunc
	running  map[string]int
}

// New creates a Scheduler. Call Stop to release its goroutines.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.Named("scheduler"),
		periodic: make(map[string]context.CancelFunc),
		running:  make(map[string]int),
	}
}

// ScheduleEvery runs fn immediately and then every interval, each wait shifted
// by a random offset in [-jitter, +jitter]. Scheduling a name that is already
// registered replaces the previous loop.
func (s *Scheduler) ScheduleEvery(name string, interval, jitter time.Duration, fn Func) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval for %q must be positive", name)
	}
	if jitter < 0 || jitter >= interval {
		jitter = 0
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: stopped")
	}
	if prev, ok := s.periodic[name]; ok {
		prev()
	}
	loopCtx, loopCancel := context.WithCancel(s.ctx)
	s.periodic[name] = loopCancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.logger.Infow("Periodic job started", "job", name, "interval", interval, "jitter", jitter)

		s.invoke(name, fn)

		timer := time.NewTimer(nextDelay(interval, jitter))
		defer timer.Stop()
		for {
			select {
			case <-loopCtx.Done():
				s.logger.Infow("Periodic job stopped", "job", name)
				return
			case <-timer.C:
				s.invoke(name, fn)
				timer.Reset(nextDelay(interval, jitter))
			}
		}
	}()
	return nil
}

// ScheduleOnce runs fn a single time in the background and returns immediately.
func (s *Scheduler) ScheduleOnce(name string, fn Func) error {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: stopped")
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.invoke(name, fn)
	}()
	return nil
}

// Cancel stops future runs of a periodic job. An invocation already in flight
// runs to completion.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.periodic[name]
	if !ok {
		return false
	}
	cancel()
	delete(s.periodic, name)
	return true
}

// IsScheduled reports whether a periodic job is registered under name.
func (s *Scheduler) IsScheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.periodic[name]
	return ok
}

// Running returns the number of invocations of name currently executing.
func (s *Scheduler) Running(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[name]
}

// Stop cancels every job and waits for in-flight invocations to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.periodic = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) invoke(name string, fn Func) {
	s.mu.Lock()
	s.running[name]++
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("Job panicked", "job", name, "panic", r)
		}
		s.mu.Lock()
		s.running[name]--
		if s.running[name] <= 0 {
			delete(s.running, name)
		}
		s.mu.Unlock()
	}()

	fn(s.ctx)
}

// nextDelay returns interval shifted by a uniform random offset in [-jitter, +jitter].
func nextDelay(interval, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return interval
	}
	offset := time.Duration((rand.Float64()*2 - 1) * float64(jitter))
	return interval + offset
}
