package fixture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agis/taskgen/internal/recurrence"
	"github.com/agis/taskgen/internal/timeparse"
)

const (
	DefaultUserID = "19621174"

	// RecurringProjectID and RecurringTaskID are the fixed ids of the single
	// task dataset; dashboard tests look them up by name.
	RecurringProjectID = "test_project_1"
	RecurringTaskID    = "test_task_1"

	createdLayout = "2006-01-02T15:04:05.000000Z"
	v2Alphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var colors = []string{
	"berry_red", "red", "orange", "yellow", "olive_green", "lime_green",
	"green", "mint_green", "teal", "sky_blue", "light_blue", "blue",
	"grape", "violet", "lavender", "magenta", "salmon", "charcoal",
	"grey", "taupe",
}

// Builder creates records from one seeded stream, so equal seeds and anchors
// produce byte-identical datasets.
type Builder struct {
	Now    time.Time
	UserID string

	src *rand.ChaCha8
	rng *rand.Rand
}

func NewBuilder(seed uint64, now time.Time) *Builder {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	src := rand.NewChaCha8(key)
	return &Builder{
		Now:    now,
		UserID: DefaultUserID,
		src:    src,
		rng:    rand.New(src),
	}
}

// Rand is the stream used for thinning.
func (b *Builder) Rand() recurrence.Rand {
	return b.rng
}

func (b *Builder) generationID() string {
	id, err := uuid.NewRandomFromReader(b.src)
	if err != nil {
		// ChaCha8 never fails to read.
		return uuid.Nil.String()
	}
	return id.String()
}

func (b *Builder) numericID() string {
	var sb strings.Builder
	sb.WriteByte(byte('1' + b.rng.IntN(9)))
	for range 9 {
		sb.WriteByte(byte('0' + b.rng.IntN(10)))
	}
	return sb.String()
}

func (b *Builder) v2ID() string {
	out := make([]byte, 16)
	for i := range out {
		out[i] = v2Alphabet[b.rng.IntN(len(v2Alphabet))]
	}
	return string(out)
}

func (b *Builder) between(lo, hi int) int {
	return lo + b.rng.IntN(hi-lo+1)
}

func (b *Builder) project(id, name, color string, order int) Project {
	return Project{
		ID:        id,
		Name:      name,
		Color:     color,
		Order:     order,
		URL:       "https://todoist.com/showProject?id=" + id,
		ViewStyle: "list",
	}
}

func (b *Builder) completed(taskID, content, projectID string, at time.Time) CompletedTask {
	return CompletedTask{
		CompletedAt: timeparse.FormatTimestamp(at),
		Content:     content,
		ID:          b.numericID(),
		Notes:       []string{},
		ProjectID:   projectID,
		TaskID:      taskID,
		UserID:      b.UserID,
		V2ProjectID: b.v2ID(),
		V2TaskID:    b.v2ID(),
	}
}

func (b *Builder) activeRecurring(taskID, content, projectID, rec string, due time.Time, order int) ActiveTask {
	dueAt := timeparse.FormatTimestamp(due)
	return ActiveTask{
		Content:   content,
		CreatedAt: b.Now.UTC().Format(createdLayout),
		CreatorID: b.UserID,
		Deadline:  &dueAt,
		Due: &Due{
			Date:        dueAt,
			String:      rec,
			Lang:        "en",
			IsRecurring: true,
		},
		ID:        taskID,
		Labels:    []string{},
		Order:     order,
		Priority:  b.between(1, 4),
		ProjectID: projectID,
		URL:       "https://app.todoist.com/app/task/" + taskID,
	}
}

// nextDue is the first occurrence after the window, or the following
// midnight when the pattern has no upcoming occurrence.
func nextDue(p recurrence.Pattern, w recurrence.Window) (time.Time, error) {
	next, err := recurrence.Next(p, w)
	if errors.Is(err, recurrence.ErrNoOccurrence) {
		y, m, d := w.End.Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, w.End.Location()), nil
	}
	return next, err
}

func (b *Builder) stats(ds *Dataset) {
	ds.TotalCompletedTasks = len(ds.AllCompletedTasks)
	ds.Karma = b.between(1000, 5000)
	ds.KarmaTrend = "up"
	ds.KarmaRising = true
	ds.DailyGoal = 10
	ds.WeeklyGoal = 50
}

// RecurringRequest describes the single recurring task dataset.
type RecurringRequest struct {
	Content        string
	ProjectName    string
	Recurrence     string
	Window         recurrence.Window
	CompletionRate float64
}

// Result is a dataset plus what went into it.
type Result struct {
	Dataset     Dataset
	Occurrences []time.Time
	NextDue     time.Time
}

// Recurring builds one project, one active recurring task due at the next
// occurrence after the window and one completed task per kept occurrence.
func (b *Builder) Recurring(req RecurringRequest) (Result, error) {
	p, err := recurrence.Parse(req.Recurrence)
	if err != nil {
		return Result{}, err
	}
	occ, err := recurrence.Expand(p, req.Window)
	if err != nil {
		return Result{}, err
	}
	occ = recurrence.Thin(occ, req.CompletionRate, b.rng)
	due, err := nextDue(p, req.Window)
	if err != nil {
		return Result{}, err
	}

	content := firstNonEmpty(req.Content, "Test recurring task")
	ds := Dataset{
		GenerationID: b.generationID(),
		ProjectData:  []Project{b.project(RecurringProjectID, firstNonEmpty(req.ProjectName, "Test Project"), "blue", 1)},
		ActiveTasks: []ActiveTask{
			b.activeRecurring(RecurringTaskID, content, RecurringProjectID, req.Recurrence, due, b.between(1, 10)),
		},
		AllCompletedTasks: make([]CompletedTask, 0, len(occ)),
	}
	for _, at := range occ {
		ds.AllCompletedTasks = append(ds.AllCompletedTasks, b.completed(RecurringTaskID, content, RecurringProjectID, at))
	}
	b.stats(&ds)
	return Result{Dataset: ds, Occurrences: occ, NextDue: due}, nil
}

// TemplateResult reports one template row of a batch build.
type TemplateResult struct {
	Template   Template
	Recurrence string
	Completed  int
	NextDue    time.Time
	Err        error
}

// Templates expands every template over w into one dataset. A template that
// fails is reported in its result and skipped; the rest still build. With
// stopOnError the first failure ends the run.
func (b *Builder) Templates(tpls []Template, w recurrence.Window, rate float64, stopOnError bool) (Dataset, []TemplateResult) {
	ds := Dataset{GenerationID: b.generationID()}
	projects := map[string]string{}
	results := make([]TemplateResult, 0, len(tpls))

	for _, tpl := range tpls {
		res := TemplateResult{Template: tpl}
		p, rec, err := tpl.Pattern()
		if err == nil {
			res.Recurrence = rec
			err = b.addTemplate(&ds, projects, tpl, p, rec, w, rate, &res)
		}
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", tpl.Label(), err)
		}
		results = append(results, res)
		if err != nil && stopOnError {
			break
		}
	}
	sortCompleted(ds.AllCompletedTasks)
	b.stats(&ds)
	return ds, results
}

func (b *Builder) addTemplate(ds *Dataset, projects map[string]string, tpl Template, p recurrence.Pattern, rec string, w recurrence.Window, rate float64, res *TemplateResult) error {
	occ, err := recurrence.Expand(p, w)
	if err != nil {
		return err
	}
	occ = recurrence.Thin(occ, rate, b.rng)
	due, err := nextDue(p, w)
	if err != nil {
		return err
	}

	projectName := firstNonEmpty(tpl.Project, "Inbox")
	projectID, ok := projects[projectName]
	if !ok {
		projectID = b.numericID()
		projects[projectName] = projectID
		proj := b.project(projectID, projectName, colors[b.rng.IntN(len(colors))], len(ds.ProjectData)+1)
		proj.IsInboxProject = projectName == "Inbox"
		ds.ProjectData = append(ds.ProjectData, proj)
	}

	taskID := b.numericID()
	ds.ActiveTasks = append(ds.ActiveTasks, b.activeRecurring(taskID, tpl.Content, projectID, rec, due, len(ds.ActiveTasks)+1))
	for _, at := range occ {
		ds.AllCompletedTasks = append(ds.AllCompletedTasks, b.completed(taskID, tpl.Content, projectID, at))
	}
	res.Completed = len(occ)
	res.NextDue = due
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
