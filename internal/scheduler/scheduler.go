package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/metrics"
)

const (
	DefaultInterval     = 5 * time.Minute
	DefaultCycleTimeout = 4 * time.Minute
)

var (
	ErrAlreadyRunning = errors.New("fetch cycle is already running")
	ErrStopped        = errors.New("scheduler is stopped")
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Один цикл сбора
type Runner interface {
	Fetch(ctx context.Context) error
}

type Config struct {
	Interval time.Duration
	// Потолок на весь цикл
	CycleTimeout time.Duration
	// Запустить первый цикл сразу после Start
	RunOnStart bool
}

// Итоги последнего цикла
type RunInfo struct {
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner

	cycleTimeout time.Duration
	runOnStart   bool

	running atomic.Bool
	wg      sync.WaitGroup

	// Под lifeMu регистрируем циклы в wg, после Stop новые не стартуют
	lifeMu  sync.Mutex
	stopped bool

	mu   sync.Mutex
	last RunInfo

	ctx    context.Context
	cancel context.CancelFunc
}

func New(runner Runner, cfg Config) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = DefaultCycleTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:         cron.New(),
		runner:       runner,
		cycleTimeout: cfg.CycleTimeout,
		runOnStart:   cfg.RunOnStart,
		ctx:          ctx,
		cancel:       cancel,
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", cfg.Interval), s.runScheduled); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule fetch job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()

	if s.runOnStart && s.track() {
		go func() {
			defer s.wg.Done()
			s.runScheduled()
		}()
	}
}

// Останавливаем таймер, отменяем текущий цикл и ждем, пока он закончится
func (s *Scheduler) Stop(ctx context.Context) error {
	s.lifeMu.Lock()
	s.stopped = true
	s.lifeMu.Unlock()

	cronDone := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Внеплановый цикл. Выполняется синхронно.
// Если цикл уже идет, возвращаем ErrAlreadyRunning, после Stop - ErrStopped.
// Отмена ctx вызывающего цикл не обрывает, его отменяет только Stop
func (s *Scheduler) TriggerFetch(ctx context.Context) error {
	if !s.track() {
		return ErrStopped
	}
	defer s.wg.Done()

	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.run(ctx)
}

func (s *Scheduler) track() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.stopped {
		return false
	}
	s.wg.Add(1)

	return true
}

func (s *Scheduler) State() State {
	if s.running.Load() {
		return StateRunning
	}

	return StateIdle
}

func (s *Scheduler) LastRun() RunInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

func (s *Scheduler) runScheduled() {
	if !s.running.CompareAndSwap(false, true) {
		log.Info("previous fetch cycle is still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	_ = s.run(s.ctx)
}

func (s *Scheduler) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	start := time.Now()
	err := s.runner.Fetch(ctx)
	took := time.Since(start)

	metrics.CycleDuration.Observe(took.Seconds())
	if err != nil {
		metrics.CyclesFailed.Inc()
		log.WithField("took", took.Round(time.Millisecond)).WithError(err).Error("fetch cycle failed")
	}

	s.mu.Lock()
	s.last = RunInfo{StartedAt: start.UTC(), Duration: took, Err: err}
	s.mu.Unlock()

	return err
}
