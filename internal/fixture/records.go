// Package fixture assembles the Todoist-shaped JSON datasets the dashboard
// tests load: projects, active recurring tasks and completed tasks whose
// completion times come from expanded recurrences.
package fixture

type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	CommentCount   int     `json:"commentCount"`
	IsShared       bool    `json:"isShared"`
	IsFavorite     bool    `json:"isFavorite"`
	IsInboxProject bool    `json:"isInboxProject"`
	IsTeamInbox    bool    `json:"isTeamInbox"`
	Order          int     `json:"order"`
	ParentID       *string `json:"parentId"`
	URL            string  `json:"url"`
	ViewStyle      string  `json:"viewStyle"`
}

type Due struct {
	Date        string `json:"date"`
	String      string `json:"string"`
	Lang        string `json:"lang"`
	IsRecurring bool   `json:"isRecurring"`
}

type ActiveTask struct {
	AssigneeID   *string  `json:"assigneeId"`
	AssignerID   *string  `json:"assignerId"`
	CommentCount int      `json:"commentCount"`
	Content      string   `json:"content"`
	CreatedAt    string   `json:"createdAt"`
	CreatorID    string   `json:"creatorId"`
	Deadline     *string  `json:"deadline"`
	Description  string   `json:"description"`
	Due          *Due     `json:"due"`
	Duration     *string  `json:"duration"`
	ID           string   `json:"id"`
	IsCompleted  bool     `json:"isCompleted"`
	Labels       []string `json:"labels"`
	Order        int      `json:"order"`
	ParentID     *string  `json:"parentId"`
	Priority     int      `json:"priority"`
	ProjectID    string   `json:"projectId"`
	SectionID    *string  `json:"sectionId"`
	URL          string   `json:"url"`
}

type CompletedTask struct {
	CompletedAt string   `json:"completed_at"`
	Content     string   `json:"content"`
	ID          string   `json:"id"`
	ItemObject  *string  `json:"item_object"`
	MetaData    *string  `json:"meta_data"`
	NoteCount   int      `json:"note_count"`
	Notes       []string `json:"notes"`
	ProjectID   string   `json:"project_id"`
	SectionID   *string  `json:"section_id"`
	TaskID      string   `json:"task_id"`
	UserID      string   `json:"user_id"`
	V2ProjectID string   `json:"v2_project_id"`
	V2SectionID *string  `json:"v2_section_id"`
	V2TaskID    string   `json:"v2_task_id"`
}

// Dataset is the single-file form. The recurring command splits it into
// three files instead.
type Dataset struct {
	GenerationID        string          `json:"generationId"`
	AllCompletedTasks   []CompletedTask `json:"allCompletedTasks"`
	ProjectData         []Project       `json:"projectData"`
	ActiveTasks         []ActiveTask    `json:"activeTasks"`
	TotalCompletedTasks int             `json:"totalCompletedTasks"`
	HasMoreTasks        bool            `json:"hasMoreTasks"`
	Karma               int             `json:"karma"`
	KarmaTrend          string          `json:"karmaTrend"`
	KarmaRising         bool            `json:"karmaRising"`
	DailyGoal           int             `json:"dailyGoal"`
	WeeklyGoal          int             `json:"weeklyGoal"`
}
