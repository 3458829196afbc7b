package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryGateway is an in-process Gateway used by demo mode and tests. It
// keeps today's entries in memory and stamps UpdatedAt on every write, which
// is all the recency heuristic needs to behave exactly as it does against the
// real service.
type MemoryGateway struct {
	mu       sync.Mutex
	entries  []TimeEntry
	projects []Project
	nextID   int64
	down     bool

	// Now is swappable so tests can pin timestamps.
	Now func() time.Time
}

var _ Gateway = (*MemoryGateway)(nil)

// NewMemoryGateway builds a gateway over the given project catalog.
func NewMemoryGateway(projects []Project) *MemoryGateway {
	return &MemoryGateway{
		projects: projects,
		nextID:   1,
		Now:      time.Now,
	}
}

// DemoProjects returns the catalog seeded by demo mode.
func DemoProjects() []Project {
	return []Project{
		{ID: 101, Client: "Initech", Name: "TPS Migration", Tasks: []Task{
			{ID: 1, Name: "Development"},
			{ID: 2, Name: "Code Review"},
		}},
		{ID: 102, Client: "Globex", Name: "Storefront", Tasks: []Task{
			{ID: 1, Name: "Development"},
			{ID: 3, Name: "Meetings"},
		}},
	}
}

// SetDown switches the simulated service status.
func (g *MemoryGateway) SetDown(down bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.down = down
}

// Seed installs an entry directly, bypassing Create's stamping. Test helper.
func (g *MemoryGateway) Seed(entry TimeEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if entry.ID == 0 {
		entry.ID = g.nextID
	}
	if entry.ID >= g.nextID {
		g.nextID = entry.ID + 1
	}
	g.entries = append(g.entries, entry)
}

// GetToday returns a copy of the current day state.
func (g *MemoryGateway) GetToday(_ context.Context) (DailySnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entries := make([]TimeEntry, len(g.entries))
	copy(entries, g.entries)
	projects := make([]Project, len(g.projects))
	copy(projects, g.projects)
	return DailySnapshot{
		Entries:  entries,
		Projects: projects,
		ForDay:   g.Now().Format(forDayLayout),
	}, nil
}

// Create appends a new entry stamped with the current time.
func (g *MemoryGateway) Create(_ context.Context, fields EntryFields) (TimeEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	project, task, err := g.lookupLocked(fields.ProjectID, fields.TaskID)
	if err != nil {
		return TimeEntry{}, err
	}
	now := g.Now()
	entry := TimeEntry{
		ID:          g.nextID,
		ProjectID:   fields.ProjectID,
		TaskID:      fields.TaskID,
		Hours:       fields.Hours,
		Notes:       fields.Notes,
		ProjectName: project.Name,
		TaskName:    task.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	g.nextID++
	g.entries = append(g.entries, entry)
	return entry, nil
}

// Update rewrites an entry's writable fields and bumps UpdatedAt.
func (g *MemoryGateway) Update(_ context.Context, id int64, fields EntryFields) (TimeEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.entries {
		if g.entries[i].ID != id {
			continue
		}
		project, task, err := g.lookupLocked(fields.ProjectID, fields.TaskID)
		if err != nil {
			return TimeEntry{}, err
		}
		g.entries[i].ProjectID = fields.ProjectID
		g.entries[i].TaskID = fields.TaskID
		g.entries[i].Hours = fields.Hours
		g.entries[i].Notes = fields.Notes
		g.entries[i].ProjectName = project.Name
		g.entries[i].TaskName = task.Name
		g.entries[i].UpdatedAt = g.Now()
		return g.entries[i], nil
	}
	return TimeEntry{}, fmt.Errorf("entry %d not found", id)
}

// ToggleTimer flips the timer flag, bumping UpdatedAt either way.
func (g *MemoryGateway) ToggleTimer(_ context.Context, id int64) (TimeEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.entries {
		if g.entries[i].ID != id {
			continue
		}
		now := g.Now()
		if g.entries[i].TimerStartedAt != nil {
			g.entries[i].TimerStartedAt = nil
		} else {
			started := now
			g.entries[i].TimerStartedAt = &started
		}
		g.entries[i].UpdatedAt = now
		return g.entries[i], nil
	}
	return TimeEntry{}, fmt.Errorf("entry %d not found", id)
}

// CheckStatus honors the simulated status switch.
func (g *MemoryGateway) CheckStatus(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.down {
		return ErrServiceDown
	}
	return nil
}

func (g *MemoryGateway) lookupLocked(projectID, taskID int64) (Project, Task, error) {
	for _, p := range g.projects {
		if p.ID != projectID {
			continue
		}
		for _, t := range p.Tasks {
			if t.ID == taskID {
				return p, t, nil
			}
		}
		return Project{}, Task{}, fmt.Errorf("task %d not found under project %d", taskID, projectID)
	}
	return Project{}, Task{}, fmt.Errorf("project %d not found", projectID)
}
