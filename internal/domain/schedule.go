package domain

import "time"

// Frequency is the cadence of a recurring schedule.
type Frequency string

const (
	FrequencyHourly     Frequency = "hourly"
	FrequencyTwiceDaily Frequency = "twice_daily"
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
)

// Interval returns the nominal spacing between consecutive runs. Projection
// uses this fixed duration; the live scheduler re-anchors on wall-clock time
// instead.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyTwiceDaily:
		return 12 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Mode controls queue-exhaustion policy.
type Mode string

const (
	// ModeManual finishes the schedule once the queue drains.
	ModeManual Mode = "manual"
	// ModeInfinite synthesizes a fresh topic whenever the queue is empty.
	ModeInfinite Mode = "infinite"
)

// ScheduleStatus is the operator-visible lifecycle state.
type ScheduleStatus string

const (
	ScheduleActive   ScheduleStatus = "active"
	SchedulePaused   ScheduleStatus = "paused"
	ScheduleFinished ScheduleStatus = "finished"
)

// OutputStatus tells the scheduler what to do with a generated article.
type OutputStatus string

const (
	OutputDraft     OutputStatus = "draft"
	OutputPublished OutputStatus = "published"
)

// Schedule is a recurring generation job: a topic queue plus a cadence.
// NextRunAt is the authoritative dispatch gate; the scheduler recomputes it
// after every execution attempt and on every save while the schedule is
// active.
type Schedule struct {
	ID         string
	Name       string
	TemplateID string
	BroadTopic string

	Frequency Frequency
	// ExecutionTime is the local wall-clock anchor in "HH:MM" form, used by
	// the daily, twice-daily and weekly cadences.
	ExecutionTime string
	Mode          Mode
	Status        ScheduleStatus
	OutputStatus  OutputStatus

	Provider string
	Model    string
	Notify   bool

	// NextRunAt is zero when the schedule has never been scheduled.
	NextRunAt time.Time
	// Queue holds pending topics, head first.
	Queue []string
}

// WithDefaults normalizes enum fields loaded from storage.
func (s Schedule) WithDefaults() Schedule {
	switch s.Frequency {
	case FrequencyHourly, FrequencyTwiceDaily, FrequencyDaily, FrequencyWeekly:
	default:
		s.Frequency = FrequencyDaily
	}
	if s.Mode == "" {
		s.Mode = ModeManual
	}
	if s.Status == "" {
		s.Status = SchedulePaused
	}
	if s.OutputStatus == "" {
		s.OutputStatus = OutputDraft
	}
	if s.ExecutionTime == "" {
		s.ExecutionTime = "09:00"
	}
	return s
}
