package harvest

import "time"

const forDayLayout = "2006-01-02"

// TimeEntry mirrors one record from the daily endpoint. Timestamps arrive in
// RFC 3339 UTC and decode straight into time.Time. TimerStartedAt is nil when
// the server-side timer flag is not set; nothing in the core treats that flag
// as ground truth for "running" (see the track package), but commits clear it
// when the server hands it back.
type TimeEntry struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"project_id"`
	TaskID         int64      `json:"task_id"`
	Hours          float64    `json:"hours"`
	Notes          string     `json:"notes"`
	ProjectName    string     `json:"project"`
	TaskName       string     `json:"task"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	TimerStartedAt *time.Time `json:"timer_started_at,omitempty"`
}

// Project is one assignable project with its task list. Order within
// DailySnapshot.Projects is server order and is preserved all the way to the
// selection UI.
type Project struct {
	ID     int64  `json:"id"`
	Client string `json:"client"`
	Name   string `json:"name"`
	Tasks  []Task `json:"tasks"`
}

// Task is one assignable task under a project.
type Task struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DailySnapshot mirrors the daily endpoint payload: today's entries plus the
// project/task catalog, all replaced wholesale on every fetch.
type DailySnapshot struct {
	Entries  []TimeEntry `json:"day_entries"`
	Projects []Project   `json:"projects"`
	ForDay   string      `json:"for_day"`
}

// ParsedForDay returns ForDay as a date when possible.
func (s DailySnapshot) ParsedForDay() time.Time {
	if s.ForDay == "" {
		return time.Time{}
	}
	t, err := time.Parse(forDayLayout, s.ForDay)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EntryFields carries the writable fields for create and update calls.
type EntryFields struct {
	ProjectID int64   `json:"project_id"`
	TaskID    int64   `json:"task_id"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes"`
}
