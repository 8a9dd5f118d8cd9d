package spacetraders

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Scheduler admits deferred calls one at a time in submission order, keeping
// at least a minimum interval between consecutive admissions.
type Scheduler struct {
	limiter     *rate.Limiter
	concurrency int
	logger      zerolog.Logger

	mu    sync.Mutex
	queue []*scheduledCall
	wake  chan struct{}

	// admitMu serializes admission so FIFO order holds with several workers
	admitMu sync.Mutex

	stopOnce sync.Once
	stopped  atomic.Bool
	quit     chan struct{}
	wg       sync.WaitGroup
}

type scheduledCall struct {
	id        string
	ctx       context.Context
	fn        func(context.Context) error
	submitted time.Time
	done      chan error
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithSchedulerConcurrency sets how many admitted calls may run at once
func WithSchedulerConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.concurrency = n
	}
}

// NewScheduler creates a scheduler that spaces admissions by minInterval.
// A zero interval admits calls as fast as the workers free up.
func NewScheduler(minInterval time.Duration, logger zerolog.Logger, opts ...SchedulerOption) *Scheduler {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	s := &Scheduler{
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: 1,
		logger:      logger,
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.concurrency <= 0 {
		s.concurrency = 1
	}

	for i := 0; i < s.concurrency; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Submit queues fn and returns a channel that receives its result once.
func (s *Scheduler) Submit(ctx context.Context, fn func(context.Context) error) <-chan error {
	return s.enqueue(ctx, fn).done
}

// Schedule queues fn and blocks until it has run or was rejected. If ctx is
// cancelled while the call is still queued, the call is withdrawn and the
// context error is returned. A call already admitted is waited for.
func (s *Scheduler) Schedule(ctx context.Context, fn func(context.Context) error) error {
	call := s.enqueue(ctx, fn)

	select {
	case err := <-call.done:
		return err
	case <-ctx.Done():
		if s.withdraw(call) {
			return ctx.Err()
		}
		return <-call.done
	}
}

// Do schedules fn on s and returns its result.
func Do[T any](ctx context.Context, s *Scheduler, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := s.Schedule(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Pending returns the number of queued calls not yet admitted
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Stop rejects new work and fails every queued call with ErrSchedulerStopped.
// It waits for in-flight calls to finish or for ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) error {
	var err error

	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped.Store(true)
		pending := s.queue
		s.queue = nil
		s.mu.Unlock()

		close(s.quit)

		for _, call := range pending {
			call.done <- ErrSchedulerStopped
		}

		if len(pending) > 0 {
			s.logger.Debug().Int("rejected", len(pending)).Msg("Scheduler stopped with queued calls")
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})

	return err
}

func (s *Scheduler) enqueue(ctx context.Context, fn func(context.Context) error) *scheduledCall {
	call := &scheduledCall{
		id:        uuid.NewString(),
		ctx:       ctx,
		fn:        fn,
		submitted: time.Now(),
		done:      make(chan error, 1),
	}

	s.mu.Lock()
	if s.stopped.Load() {
		s.mu.Unlock()
		call.done <- ErrSchedulerStopped
		return call
	}
	s.queue = append(s.queue, call)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return call
}

// withdraw removes a queued call, reporting false if it was already taken
func (s *Scheduler) withdraw(call *scheduledCall) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.queue, call)
	if i < 0 {
		return false
	}
	s.queue = slices.Delete(s.queue, i, i+1)
	return true
}

func (s *Scheduler) pop() *scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil
	}
	call := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return call
}

// worker runs admitted calls until the scheduler stops
func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		call, ok := s.admit()
		if !ok {
			return
		}

		s.logger.Debug().
			Str("call_id", call.id).
			Dur("queued", time.Since(call.submitted)).
			Msg("Admitted scheduled call")

		call.done <- call.fn(call.ctx)
	}
}

// admit blocks until the head of the queue may run. Calls whose context ends
// before admission are failed with the context error and skipped.
func (s *Scheduler) admit() (*scheduledCall, bool) {
	s.admitMu.Lock()
	defer s.admitMu.Unlock()

	for {
		call := s.pop()
		if call == nil {
			select {
			case <-s.wake:
				continue
			case <-s.quit:
				return nil, false
			}
		}

		if err := call.ctx.Err(); err != nil {
			call.done <- err
			continue
		}

		r := s.limiter.Reserve()
		if delay := r.Delay(); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-call.ctx.Done():
				timer.Stop()
				r.Cancel()
				call.done <- call.ctx.Err()
				continue
			case <-s.quit:
				timer.Stop()
				r.Cancel()
				call.done <- ErrSchedulerStopped
				return nil, false
			}
		}

		if s.stopped.Load() {
			call.done <- ErrSchedulerStopped
			return nil, false
		}

		return call, true
	}
}
