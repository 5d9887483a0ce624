// Package supervisor restarts the panel assembly from scratch whenever it
// fails.
//
// The supervisor is crash-only: it never repairs a running assembly. When
// any task returns an error or panics, every sibling task is cancelled, the
// assembly is discarded, and a new one is built by the factory after a
// backoff delay. There is no retry limit.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultStableAfter is how long an assembly must run before the backoff
// policy is reset.
const DefaultStableAfter = time.Minute

// ErrTaskExited is returned when a task returns nil while the assembly is
// still meant to be running.
var ErrTaskExited = errors.New("task exited unexpectedly")

// Task is one long-lived loop of the assembly.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Factory builds a fresh assembly. generation starts at 1 and increases by
// one on every restart.
type Factory func(generation int) ([]Task, error)

// Supervisor runs assemblies built by a [Factory] until its context ends.
type Supervisor struct {
	policy      backoff.BackOff
	stableAfter time.Duration
	logger      *slog.Logger
	onRestart   func(generation int, err error)
}

// Option configures a [Supervisor].
type Option func(*Supervisor)

// WithStableAfter sets how long an assembly must survive before the backoff
// resets.
func WithStableAfter(d time.Duration) Option {
	return func(s *Supervisor) {
		s.stableAfter = d
	}
}

// WithRestartHook registers a function called after each failed generation,
// before the backoff delay.
func WithRestartHook(fn func(generation int, err error)) Option {
	return func(s *Supervisor) {
		s.onRestart = fn
	}
}

// DefaultPolicy returns an exponential backoff from 1s to 1m that never
// gives up. Jitter is disabled so 1m is a hard ceiling.
func DefaultPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// New creates a [Supervisor]. A nil policy uses [DefaultPolicy].
func New(policy backoff.BackOff, logger *slog.Logger, opts ...Option) *Supervisor {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{
		policy:      policy,
		stableAfter: DefaultStableAfter,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run builds and runs assemblies until ctx is cancelled, then returns nil.
func (s *Supervisor) Run(ctx context.Context, factory Factory) error {
	s.policy.Reset()

	for generation := 1; ; generation++ {
		started := time.Now()
		err := s.runGeneration(ctx, generation, factory)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = ErrTaskExited
		}

		if time.Since(started) >= s.stableAfter {
			s.policy.Reset()
		}
		delay := s.policy.NextBackOff()
		if delay == backoff.Stop {
			// policies may give up; the supervisor does not
			s.policy.Reset()
			delay = s.policy.NextBackOff()
			if delay == backoff.Stop {
				delay = 0
			}
		}

		s.logger.Error("assembly crashed, restarting",
			"generation", generation,
			"error", err.Error(),
			"uptime", time.Since(started).String(),
			"backoff", delay.String(),
		)
		if s.onRestart != nil {
			s.onRestart(generation, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// runGeneration builds one assembly and runs its tasks until the first
// failure or cancellation.
func (s *Supervisor) runGeneration(ctx context.Context, generation int, factory Factory) error {
	tasks, err := safeBuild(factory, generation)
	if err != nil {
		return fmt.Errorf("build assembly: %w", err)
	}

	s.logger.Info("assembly started", "generation", generation, "tasks", len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			err := s.runTask(gctx, task)
			if err == nil && gctx.Err() == nil {
				return fmt.Errorf("%s: %w", task.Name, ErrTaskExited)
			}
			return err
		})
	}
	return g.Wait()
}

// runTask calls the task with panic recovery.
func (s *Supervisor) runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("task panic",
				"task", task.Name,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%s panic (correlation_id: %s)", task.Name, correlationID)
		}
	}()

	if err := task.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", task.Name, err)
	}
	return nil
}

func safeBuild(factory Factory, generation int) (tasks []Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panic: %v", r)
		}
	}()
	return factory(generation)
}
