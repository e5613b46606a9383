package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
)

// SchedulerDeps wires the recurring-job engine.
type SchedulerDeps struct {
	Schedules ports.ScheduleStore
	Articles  ports.ArticleStore
	Generator *Generator
	Topics    *TopicSynthesizer
	Notifier  ports.Notifier
	Location  *time.Location
	Logger    *slog.Logger
	// EditURLFormat builds the edit reference included in notifications,
	// with one %s verb for the article id.
	EditURLFormat string
}

// Scheduler owns recurring schedules: it scans for due jobs on every
// external trigger tick, drains topic queues, invokes the generator and
// recomputes next-run anchors. One scan processes schedules strictly
// sequentially; an error in one schedule never affects the others.
type Scheduler struct {
	schedules     ports.ScheduleStore
	articles      ports.ArticleStore
	generator     *Generator
	topics        *TopicSynthesizer
	notifier      ports.Notifier
	loc           *time.Location
	logger        *slog.Logger
	editURLFormat string
	now           func() time.Time
}

// NewScheduler builds the engine.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		schedules:     deps.Schedules,
		articles:      deps.Articles,
		generator:     deps.Generator,
		topics:        deps.Topics,
		notifier:      deps.Notifier,
		loc:           loc,
		logger:        deps.Logger,
		editURLFormat: deps.EditURLFormat,
		now:           time.Now,
	}
}

// RunPendingJobs performs one due-job scan. Paused and finished schedules
// are skipped, as are active ones whose NextRunAt is unset or still in the
// future. Every executed schedule gets its NextRunAt recomputed afterwards,
// success or failure.
func (s *Scheduler) RunPendingJobs(ctx context.Context) error {
	schedules, err := s.schedules.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	now := s.now().UTC()
	for i := range schedules {
		sched := schedules[i].WithDefaults()
		if sched.Status != domain.ScheduleActive {
			continue
		}
		if sched.NextRunAt.IsZero() || now.Before(sched.NextRunAt) {
			continue
		}

		s.logger.Info("schedule due", "schedule_id", sched.ID, "name", sched.Name)
		s.executeJob(ctx, sched)

		next := NextRun(s.now(), sched.Frequency, sched.ExecutionTime, s.loc)
		if err := s.schedules.SetNextRun(ctx, sched.ID, next); err != nil {
			s.logger.Error("persisting next run failed", "schedule_id", sched.ID, "error", err)
			continue
		}
		s.logger.Info("next run scheduled", "schedule_id", sched.ID, "at", formatRun(next, s.loc))
	}
	return nil
}

// RecomputeNextRun re-anchors an active schedule after an operator save, so
// frequency or execution-time changes apply immediately.
func (s *Scheduler) RecomputeNextRun(ctx context.Context, sched domain.Schedule) error {
	sched = sched.WithDefaults()
	if sched.Status != domain.ScheduleActive {
		return nil
	}
	next := NextRun(s.now(), sched.Frequency, sched.ExecutionTime, s.loc)
	if err := s.schedules.SetNextRun(ctx, sched.ID, next); err != nil {
		return fmt.Errorf("persist next run: %w", err)
	}
	return nil
}

// executeJob resolves a topic, runs the generator and handles publication
// and notification. Failures are lossy by design: a popped topic is consumed
// whether or not generation succeeds, and nothing is retried within a tick.
func (s *Scheduler) executeJob(ctx context.Context, sched domain.Schedule) {
	topic, ok := s.resolveTopic(ctx, sched)
	if !ok {
		return
	}

	articleID, err := s.generator.Generate(ctx, GenerateRequest{
		Topic:      topic,
		TemplateID: sched.TemplateID,
		Provider:   sched.Provider,
		Model:      sched.Model,
	})
	if err != nil {
		s.logSchedule(ctx, sched.ID, domain.SeverityError, fmt.Sprintf("Generation failed for topic %q: %v", topic, err))
		return
	}

	if sched.OutputStatus == domain.OutputPublished {
		if err := s.articles.Publish(ctx, articleID); err != nil {
			s.logSchedule(ctx, sched.ID, domain.SeverityError, fmt.Sprintf("Publishing article %s failed: %v", articleID, err))
		}
	}

	if sched.Notify {
		s.sendNotification(ctx, sched, topic, articleID)
	}

	s.logSchedule(ctx, sched.ID, domain.SeveritySuccess, "Job completed for topic: "+topic)
}

// resolveTopic pops the queue head, or synthesizes a topic in infinite mode,
// or finishes a drained manual schedule. The queue pop is persisted before
// any generation starts, so a crash mid-generation never re-offers the same
// topic.
func (s *Scheduler) resolveTopic(ctx context.Context, sched domain.Schedule) (string, bool) {
	if len(sched.Queue) > 0 {
		topic := sched.Queue[0]
		if err := s.schedules.SaveQueue(ctx, sched.ID, sched.Queue[1:]); err != nil {
			s.logSchedule(ctx, sched.ID, domain.SeverityError, fmt.Sprintf("Persisting queue pop failed: %v", err))
			return "", false
		}
		return topic, true
	}

	if sched.Mode == domain.ModeInfinite {
		topic, err := s.topics.SynthesizeOne(ctx, sched.BroadTopic, sched.Provider, sched.Model)
		if err != nil {
			s.logSchedule(ctx, sched.ID, domain.SeverityError, fmt.Sprintf("Topic synthesis failed: %v", err))
			return "", false
		}
		return topic, true
	}

	if err := s.schedules.SetScheduleStatus(ctx, sched.ID, domain.ScheduleFinished); err != nil {
		s.logSchedule(ctx, sched.ID, domain.SeverityError, fmt.Sprintf("Marking schedule finished failed: %v", err))
		return "", false
	}
	s.logSchedule(ctx, sched.ID, domain.SeverityWarning, "Schedule finished: queue empty and mode is manual.")
	return "", false
}

func (s *Scheduler) sendNotification(ctx context.Context, sched domain.Schedule, topic, articleID string) {
	if s.notifier == nil {
		return
	}
	subject := "New post generated"
	body := fmt.Sprintf("Schedule %q generated a new post.\n\nTopic: %s\nEdit: %s",
		sched.Name, topic, fmt.Sprintf(s.editURLFormat, articleID))
	if err := s.notifier.Send(ctx, subject, body); err != nil {
		s.logSchedule(ctx, sched.ID, domain.SeverityWarning, fmt.Sprintf("Notification failed: %v", err))
	}
}

func (s *Scheduler) logSchedule(ctx context.Context, scheduleID string, severity domain.Severity, message string) {
	switch severity {
	case domain.SeverityError:
		s.logger.Error(message, "schedule_id", scheduleID)
	case domain.SeverityWarning:
		s.logger.Warn(message, "schedule_id", scheduleID)
	default:
		s.logger.Info(message, "schedule_id", scheduleID)
	}
	if err := s.schedules.AppendScheduleLog(ctx, scheduleID, domain.LogEntry{
		Time:     s.now().UTC(),
		Message:  message,
		Severity: severity,
	}); err != nil {
		s.logger.Warn("appending schedule log failed", "schedule_id", scheduleID, "error", err)
	}
}
