package usecase

import (
	"sort"
	"time"

	"autoblogger/internal/domain"
)

// syntheticProjectionCount is how many placeholder entries an infinite-mode
// schedule contributes after its real queue is exhausted.
const syntheticProjectionCount = 5

// syntheticTopicTitle labels projected entries whose topic does not exist yet.
const syntheticTopicTitle = "Auto-generated Topic"

// ProjectedTask is one entry of the upcoming-work timeline.
type ProjectedTask struct {
	Topic        string
	ScheduleID   string
	ScheduleName string
	At           time.Time
	// Synthetic marks entries whose topic will be synthesized at run time.
	Synthetic bool
}

// UpcomingTasks derives a future-looking timeline across all schedules
// without mutating any of them. Each queued topic is projected at the
// current projected time, which then advances by the schedule's fixed
// frequency interval; execution-time anchoring is deliberately ignored
// during advancement. Infinite-mode schedules append exactly five synthetic
// entries after the queue. The merged list is sorted ascending by time.
func UpcomingTasks(schedules []domain.Schedule) []ProjectedTask {
	var tasks []ProjectedTask

	for i := range schedules {
		sched := schedules[i].WithDefaults()
		if sched.Status != domain.ScheduleActive || sched.NextRunAt.IsZero() {
			continue
		}

		at := sched.NextRunAt
		interval := sched.Frequency.Interval()

		for _, topic := range sched.Queue {
			tasks = append(tasks, ProjectedTask{
				Topic:        topic,
				ScheduleID:   sched.ID,
				ScheduleName: sched.Name,
				At:           at,
			})
			at = at.Add(interval)
		}

		if sched.Mode != domain.ModeInfinite {
			continue
		}
		for n := 0; n < syntheticProjectionCount; n++ {
			tasks = append(tasks, ProjectedTask{
				Topic:        syntheticTopicTitle,
				ScheduleID:   sched.ID,
				ScheduleName: sched.Name,
				At:           at,
				Synthetic:    true,
			})
			at = at.Add(interval)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].At.Before(tasks[j].At)
	})
	return tasks
}
