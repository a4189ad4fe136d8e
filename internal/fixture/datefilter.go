package fixture

import (
	"slices"
	"time"

	"github.com/agis/taskgen/internal/recurrence"
	"github.com/agis/taskgen/internal/timeparse"
)

// Period is a slice of history, counted in days back from the anchor.
type Period struct {
	Name      string
	DaysStart int
	DaysEnd   int
	Count     int
}

// DefaultPeriods cover the dashboard's 7d, 30d, 90d, 6m and 1y presets.
var DefaultPeriods = []Period{
	{Name: "Last 7 days", DaysStart: 0, DaysEnd: 7, Count: 10},
	{Name: "8-30 days ago", DaysStart: 8, DaysEnd: 30, Count: 15},
	{Name: "31-90 days ago", DaysStart: 31, DaysEnd: 90, Count: 20},
	{Name: "91-180 days ago (6 months)", DaysStart: 91, DaysEnd: 180, Count: 25},
	{Name: "181-365 days ago (1 year)", DaysStart: 181, DaysEnd: 365, Count: 30},
}

var (
	filterProjects = []string{"Work", "Personal", "Learning"}
	taskContents   = []string{
		"Review pull request", "Team meeting", "Buy groceries", "Call dentist",
		"Morning workout", "Read chapter 5", "Fix bug", "Write documentation",
		"Plan weekend", "Update dependencies",
	}
	quarterHours = []int{0, 15, 30, 45}
)

// Distribute spreads count timestamps evenly over [start, end] with up to
// ten percent of a slot of jitter, then moves each to a quarter hour between
// 09:00 and 21:45. The result is sorted.
func Distribute(count int, start, end time.Time, rng recurrence.Rand) []time.Time {
	if count <= 0 || end.Before(start) {
		return nil
	}
	total := int64(end.Sub(start) / time.Second)
	jitterMax := int64(float64(total) * 0.1 / float64(count))

	out := make([]time.Time, 0, count)
	for i := range count {
		progress := (float64(i) + 0.5) / float64(count)
		offset := int64(progress * float64(total))
		if jitterMax > 0 {
			offset += int64(rng.IntN(int(2*jitterMax+1))) - jitterMax
		}
		offset = min(max(offset, 0), total)

		at := start.Add(time.Duration(offset) * time.Second)
		y, m, d := at.Date()
		hour := 9 + rng.IntN(13)
		minute := quarterHours[rng.IntN(len(quarterHours))]
		out = append(out, time.Date(y, m, d, hour, minute, 0, 0, at.Location()))
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

// PeriodWindow converts p into absolute bounds before now.
func PeriodWindow(p Period, now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -p.DaysEnd), now.AddDate(0, 0, -p.DaysStart)
}

// DateFilter builds the date-range filter dataset: three projects and the
// periods' completed tasks, each paired with a minimal active task whose
// createdAt sits 1-30 days before completion.
func (b *Builder) DateFilter(periods []Period) Dataset {
	ds := Dataset{GenerationID: b.generationID()}
	for i, name := range filterProjects {
		proj := b.project(b.numericID(), name, colors[b.rng.IntN(len(colors))], i+1)
		proj.IsFavorite = i == 0
		proj.IsInboxProject = i == 0
		ds.ProjectData = append(ds.ProjectData, proj)
	}

	for _, period := range periods {
		start, end := PeriodWindow(period, b.Now)
		for _, at := range Distribute(period.Count, start, end, b.rng) {
			proj := ds.ProjectData[b.rng.IntN(len(ds.ProjectData))]
			content := taskContents[b.rng.IntN(len(taskContents))]
			taskID := b.numericID()

			task := b.completed(taskID, content, proj.ID, at)
			created := at.AddDate(0, 0, -b.between(1, 30)).Add(-time.Duration(b.rng.IntN(24)) * time.Hour)
			ds.AllCompletedTasks = append(ds.AllCompletedTasks, task)
			ds.ActiveTasks = append(ds.ActiveTasks, ActiveTask{
				ID:        taskID,
				Content:   content,
				CreatedAt: created.UTC().Format(createdLayout),
				CreatorID: b.UserID,
				Labels:    []string{},
				Priority:  b.between(1, 4),
				ProjectID: proj.ID,
				URL:       "https://app.todoist.com/app/task/" + taskID,
			})
		}
	}
	sortCompleted(ds.AllCompletedTasks)
	b.stats(&ds)
	return ds
}

// sortCompleted orders tasks by completion instant, oldest first.
func sortCompleted(tasks []CompletedTask) {
	slices.SortStableFunc(tasks, func(a, b CompletedTask) int {
		ta, errA := timeparse.ParseTimestamp(a.CompletedAt)
		tb, errB := timeparse.ParseTimestamp(b.CompletedAt)
		if errA != nil || errB != nil {
			return 0
		}
		return ta.Compare(tb)
	})
}
