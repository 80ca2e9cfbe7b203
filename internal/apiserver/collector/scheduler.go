package collector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// JobFunc is one execution of a background job
type JobFunc func(ctx context.Context) error

// Job is a recurring task and the outcome of its last run
type Job struct {
	Name       string        `json:"name"`
	Interval   time.Duration `json:"interval"`
	LastRun    *time.Time    `json:"lastRun,omitempty"`
	LastResult *Result       `json:"lastResult,omitempty"`
	Runs       int           `json:"runs"`

	fn JobFunc
}

// Result of a single job execution
type Result struct {
	RunID     string        `json:"runId"`
	Status    string        `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// RunHook observes every finished run
type RunHook func(job string, err error)

// Scheduler runs each job on its own ticker. A failed run is recorded and
// logged; it is not retried and the next tick runs as usual.
type Scheduler struct {
	logger       *zap.Logger
	onRun        RunHook
	jobs         map[string]*Job
	jobMutex     sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	running      bool
	runningMutex sync.Mutex
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger *zap.Logger, onRun RunHook) *Scheduler {
	return &Scheduler{
		logger: logger.Named("scheduler"),
		onRun:  onRun,
		jobs:   make(map[string]*Job),
	}
}

// AddJob registers fn to run every interval. Jobs added to a running
// scheduler start immediately.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	if fn == nil {
		return fmt.Errorf("job %s: nil function", name)
	}

	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	s.jobMutex.Lock()
	if _, exists := s.jobs[name]; exists {
		s.jobMutex.Unlock()
		return fmt.Errorf("job %s already registered", name)
	}
	job := &Job{Name: name, Interval: interval, fn: fn}
	s.jobs[name] = job
	s.jobMutex.Unlock()

	if s.running {
		s.launch(job)
	}
	return nil
}

// Start launches the ticker of every registered job
func (s *Scheduler) Start() error {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.jobMutex.RLock()
	for _, job := range s.jobs {
		s.launch(job)
	}
	count := len(s.jobs)
	s.jobMutex.RUnlock()

	s.logger.Info("scheduler started", zap.Int("jobs", count))
	return nil
}

// Stop cancels every pending timer and waits for in-flight runs to return
func (s *Scheduler) Stop() error {
	s.runningMutex.Lock()
	if !s.running {
		s.runningMutex.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	s.cancel()
	s.runningMutex.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// Running reports whether Start was called without a matching Stop
func (s *Scheduler) Running() bool {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()
	return s.running
}

// Jobs returns a snapshot of the registered jobs sorted by name
func (s *Scheduler) Jobs() []Job {
	s.jobMutex.RLock()
	defer s.jobMutex.RUnlock()

	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot := *job
		snapshot.fn = nil
		if job.LastResult != nil {
			result := *job.LastResult
			snapshot.LastResult = &result
		}
		out = append(out, snapshot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// launch must be called with runningMutex held
func (s *Scheduler) launch(job *Job) {
	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(job.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.execute(ctx, job)
			}
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	start := time.Now()
	runID := uuid.New().String()
	s.record(job, &Result{RunID: runID, Status: StatusRunning, StartTime: start})

	err := job.fn(ctx)

	result := &Result{RunID: runID, Status: StatusSuccess, StartTime: start, Duration: time.Since(start)}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		s.logger.Debug("job failed",
			zap.String("job", job.Name),
			zap.String("run_id", runID),
			zap.Error(err))
	}
	s.record(job, result)
	if s.onRun != nil {
		s.onRun(job.Name, err)
	}
}

func (s *Scheduler) record(job *Job, result *Result) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	job.LastResult = result
	if result.Status == StatusRunning {
		start := result.StartTime
		job.LastRun = &start
		job.Runs++
	}
}
