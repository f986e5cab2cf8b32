package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jusfiscal/config"
)

// Scheduler owns the cron runner: the recurring sweep over due
// scheduled publications plus one-shot content generation jobs.
type Scheduler struct {
	Config       *config.Config
	Logger       *zap.Logger
	Publications *PublicationService
	Content      *ContentService

	mu        sync.Mutex
	cron      *cron.Cron
	running   bool
	startedAt time.Time
	sweepID   cron.EntryID
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cfg *config.Config, logger *zap.Logger, publications *PublicationService, content *ContentService) *Scheduler {
	return &Scheduler{
		Config:       cfg,
		Logger:       logger,
		Publications: publications,
		Content:      content,
	}
}

// Start launches the cron runner with the sweep entry. Starting a
// running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron = cron.New()
	id, err := s.cron.AddFunc(s.Config.SweepSchedule, func() {
		if _, err := s.Publications.ProcessScheduledPublications(); err != nil {
			s.Logger.Error("Publication sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.Config.SweepSchedule, err)
	}
	s.sweepID = id

	s.cron.Start()
	s.running = true
	s.startedAt = time.Now().UTC()

	s.Logger.Info("Scheduler started", zap.String("sweep_schedule", s.Config.SweepSchedule))
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs. The wait
// happens outside the mutex so running jobs can still touch the
// scheduler. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	runner := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	<-runner.Stop().Done()
	s.Logger.Info("Scheduler stopped")
}

// SchedulerStatus is the introspection snapshot of the scheduler.
type SchedulerStatus struct {
	Running       bool       `json:"running"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	SweepSchedule string     `json:"sweep_schedule"`
	NextSweep     *time.Time `json:"next_sweep,omitempty"`
	JobCount      int        `json:"job_count"`
}

// Status reports whether the scheduler runs and when the sweep fires
// next.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Running:       s.running,
		SweepSchedule: s.Config.SweepSchedule,
	}
	if !s.running {
		return status
	}

	startedAt := s.startedAt
	status.StartedAt = &startedAt
	status.JobCount = len(s.cron.Entries())

	entry := s.cron.Entry(s.sweepID)
	if !entry.Next.IsZero() {
		next := entry.Next
		status.NextSweep = &next
	}
	return status
}

// ScheduleContentGeneration registers a one-shot job that generates
// drafts from the stored topics at the given time. The scheduler must
// be running.
func (s *Scheduler) ScheduleContentGeneration(at time.Time, topicCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}
	if !at.After(time.Now()) {
		return fmt.Errorf("scheduled time must be in the future")
	}

	// The job removes its own entry through the captured runner, never
	// through s.mu: Stop may be waiting on this job to finish.
	runner := s.cron
	var entryID cron.EntryID
	entryID = runner.Schedule(oneShotAt{at: at}, cron.FuncJob(func() {
		if _, err := s.Content.GenerateFromTopics(context.Background(), topicCount); err != nil {
			s.Logger.Error("Scheduled content generation failed", zap.Error(err))
		}
		runner.Remove(entryID)
	}))

	s.Logger.Info("Content generation scheduled",
		zap.Time("at", at), zap.Int("topic_count", topicCount))
	return nil
}

// oneShotAt fires exactly once at a fixed time.
type oneShotAt struct {
	at time.Time
}

func (o oneShotAt) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}
