package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/llm"
	"github.com/ppiankov/clarifai/internal/model"
)

var (
	// ErrJobNotFound is returned for unknown job IDs
	ErrJobNotFound = errors.New("briefing job not found")

	// ErrJobFinished is returned when cancelling a job that already ended
	ErrJobFinished = errors.New("briefing job already finished")
)

// FactSource supplies the claims and source allowlist a script is built from
type FactSource interface {
	Claims(ctx context.Context, topic string) ([]model.Claim, backend.Meta, error)
	SourceNames(ctx context.Context) ([]string, error)
}

// Request asks for a briefing on a topic. Empty fields take the configured defaults.
type Request struct {
	Topic    string `json:"topic"`
	Tone     string `json:"tone,omitempty"`
	Duration string `json:"duration,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

// Options configure a Manager
type Options struct {
	PollInterval time.Duration
	JobTimeout   time.Duration
	Voice        string
	Tone         string
	Duration     string
}

// OptionsFromModel converts model.BroadcastConfig to Options
func OptionsFromModel(c model.BroadcastConfig) Options {
	return Options{
		PollInterval: c.PollInterval,
		JobTimeout:   c.JobTimeout,
		Voice:        c.Voice,
		Tone:         c.Tone,
		Duration:     c.Duration,
	}
}

type entry struct {
	job    model.BriefingJob
	cancel context.CancelFunc
}

// Manager owns every briefing job. Each active job has one polling
// goroutine bound to the manager's context.
type Manager struct {
	studio Studio
	writer *llm.ScriptWriter
	facts  FactSource
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	ctx context.Context
	wg  sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]*entry
}

// NewManager creates a manager whose poll loops stop when ctx is done
func NewManager(ctx context.Context, studio Studio, writer *llm.ScriptWriter, facts FactSource, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 10 * time.Minute
	}
	if opts.Duration == "" {
		opts.Duration = model.DurationShort
	}
	if opts.Tone == "" {
		opts.Tone = "professional"
	}

	return &Manager{
		studio: studio,
		writer: writer,
		facts:  facts,
		opts:   opts,
		logger: logger.With(zap.String("service", "broadcast")),
		now:    time.Now,
		ctx:    ctx,
		jobs:   make(map[string]*entry),
	}
}

// Script writes the script for req without submitting it
func (m *Manager) Script(ctx context.Context, req Request) (*llm.ScriptResult, error) {
	req = m.withDefaults(req)
	if req.Topic == "" {
		return nil, &model.DataError{Entity: "briefing request", Field: "topic", Reason: "is empty"}
	}

	claims, _, err := m.facts.Claims(ctx, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	names, err := m.facts.SourceNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	var facts []llm.Fact
	for _, c := range claims {
		if c.Status == model.StatusVerified {
			facts = append(facts, llm.Fact{Text: c.Text, Source: c.Source})
		}
	}

	result, err := m.writer.Write(ctx, llm.ScriptRequest{
		Topic:    req.Topic,
		Facts:    facts,
		Sources:  names,
		Tone:     req.Tone,
		Duration: req.Duration,
		Voice:    req.Voice,
	})
	if err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	return result, nil
}

// Submit writes a script for req, hands it to the studio and starts polling
func (m *Manager) Submit(ctx context.Context, req Request) (model.BriefingJob, error) {
	result, err := m.Script(ctx, req)
	if err != nil {
		return model.BriefingJob{}, err
	}

	remote, err := m.studio.Submit(ctx, result.Script)
	if err != nil {
		return model.BriefingJob{}, fmt.Errorf("submit briefing: %w", err)
	}

	now := m.now()
	job := model.BriefingJob{
		ID:          uuid.NewString(),
		RemoteID:    remote.ID,
		Topic:       result.Script.Topic,
		Status:      m.normalizeStatus(remote.Status, remote.ID),
		Progress:    clampProgress(remote.Progress),
		Script:      result.Script,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if job.Status == model.JobCompleted {
		job.Progress = 100
	}

	m.logger.Info("briefing submitted",
		zap.String("job", job.ID),
		zap.String("remote", job.RemoteID),
		zap.String("topic", job.Topic),
		zap.String("writer", result.Provider))

	if job.Status.Terminal() {
		m.mu.Lock()
		m.jobs[job.ID] = &entry{job: job, cancel: func() {}}
		m.mu.Unlock()
		return job, nil
	}

	jobCtx, cancel := context.WithTimeout(m.ctx, m.opts.JobTimeout)

	m.mu.Lock()
	m.jobs[job.ID] = &entry{job: job, cancel: cancel}
	m.mu.Unlock()

	m.wg.Add(1)
	go m.poll(jobCtx, cancel, job.ID, job.RemoteID)

	return job, nil
}

// Get returns a snapshot of a job
func (m *Manager) Get(id string) (model.BriefingJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.jobs[id]
	if !ok {
		return model.BriefingJob{}, false
	}
	return e.job, true
}

// List returns every job, newest first
func (m *Manager) List() []model.BriefingJob {
	m.mu.Lock()
	jobs := make([]model.BriefingJob, 0, len(m.jobs))
	for _, e := range m.jobs {
		jobs = append(jobs, e.job)
	}
	m.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].SubmittedAt.After(jobs[j].SubmittedAt)
	})
	return jobs
}

// Cancel stops a job. The job is marked cancelled and its poll loop ends
// even when the studio cannot be told; that failure is returned.
func (m *Manager) Cancel(ctx context.Context, id string) (model.BriefingJob, error) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return model.BriefingJob{}, ErrJobNotFound
	}
	if e.job.Status.Terminal() {
		job := e.job
		m.mu.Unlock()
		return job, ErrJobFinished
	}
	e.job.Status = model.JobCancelled
	e.job.UpdatedAt = m.now()
	e.cancel()
	job := e.job
	m.mu.Unlock()

	m.logger.Info("briefing cancelled", zap.String("job", id))

	if err := m.studio.Cancel(ctx, job.RemoteID); err != nil && !errors.Is(err, ErrJobNotFound) {
		return job, fmt.Errorf("cancel briefing: %w", err)
	}
	return job, nil
}

// Wait blocks until every poll loop has exited
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) poll(ctx context.Context, cancel context.CancelFunc, id, remoteID string) {
	defer m.wg.Done()
	defer cancel()

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.finish(id, ctx.Err())
			return
		case <-ticker.C:
		}

		remote, err := m.studio.Status(ctx, remoteID)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			if errors.Is(err, ErrJobNotFound) {
				m.update(id, func(job *model.BriefingJob) {
					job.Status = model.JobFailed
					job.Error = "studio lost the job"
				})
				return
			}
			m.logger.Warn("poll briefing failed", zap.String("job", id), zap.Error(err))
			continue
		}

		done := m.update(id, func(job *model.BriefingJob) {
			job.Status = m.normalizeStatus(remote.Status, remoteID)
			job.Progress = clampProgress(remote.Progress)
			job.VideoURL = remote.VideoURL
			job.Error = remote.Error
			if job.Status == model.JobCompleted {
				job.Progress = 100
			}
		})
		if done {
			return
		}
	}
}

// update applies fn to a live job and reports whether the job is now terminal.
// Jobs already terminal, such as cancelled ones, are left untouched.
func (m *Manager) update(id string, fn func(*model.BriefingJob)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.jobs[id]
	if !ok {
		return true
	}
	if e.job.Status.Terminal() {
		return true
	}
	fn(&e.job)
	e.job.UpdatedAt = m.now()

	if e.job.Status.Terminal() {
		m.logger.Info("briefing finished",
			zap.String("job", id),
			zap.String("status", string(e.job.Status)))
		return true
	}
	return false
}

func (m *Manager) finish(id string, cause error) {
	m.update(id, func(job *model.BriefingJob) {
		job.Status = model.JobFailed
		if errors.Is(cause, context.DeadlineExceeded) {
			job.Error = fmt.Sprintf("timed out after %s", m.opts.JobTimeout)
			return
		}
		job.Error = "dashboard shut down before the briefing finished"
	})
}

func (m *Manager) normalizeStatus(s model.JobStatus, remoteID string) model.JobStatus {
	switch s {
	case model.JobQueued, model.JobRendering, model.JobCompleted, model.JobFailed, model.JobCancelled:
		return s
	}
	m.logger.Debug("unknown job status",
		zap.String("remote", remoteID),
		zap.String("status", string(s)),
		zap.Error(model.ErrUnknownEnumValue))
	return model.JobRendering
}

func (m *Manager) withDefaults(req Request) Request {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Tone == "" {
		req.Tone = m.opts.Tone
	}
	if req.Duration == "" {
		req.Duration = m.opts.Duration
	}
	if req.Voice == "" {
		req.Voice = m.opts.Voice
	}
	return req
}

func clampProgress(p int) int {
	return min(max(p, 0), 100)
}
