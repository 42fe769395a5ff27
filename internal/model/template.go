package model

import "time"

// Template limits enforced by the repositories.
const (
	MaxTemplateNameLength = 30
	MinTemplateNameLength = 1
	MaxTemplateIconLength = 2
)

// CustomTemplateIDPrefix namespaces user-created template ids so they can
// never collide with the fixed ids of the built-in templates.
const CustomTemplateIDPrefix = "custom_"

// TemplateTask is one blueprint entry of a template. It is not a persisted
// task row; expanding a template for a date creates real Task rows from it.
type TemplateTask struct {
	Description string  `json:"description"`
	Time        string  `json:"time"`
	Icon        *string `json:"icon,omitempty"`
}

// Template is a reusable day blueprint. Built-in templates are seeded once
// on first store initialization with IsDefault set; after seeding they are
// editable and deletable exactly like custom ones.
type Template struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Icon      string         `json:"icon" db:"icon"`
	IsDefault bool           `json:"is_default" db:"is_default"`
	Tasks     []TemplateTask `json:"tasks" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateTemplateInput carries the caller-supplied fields for a new custom
// template.
type CreateTemplateInput struct {
	Name  string
	Icon  string
	Tasks []TemplateTask
}

// DefaultTemplates returns the built-in templates seeded on first launch.
// Their ids are fixed and well known; seed detection counts existing rows
// with IsDefault set, so editing or deleting them later sticks.
func DefaultTemplates() []Template {
	icon := func(s string) *string { return &s }

	return []Template{
		{
			ID: "daily", Name: "Daily Routine", Icon: "☀️", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Morning Run", Time: "06:00", Icon: icon("🏃")},
				{Description: "Drink Water (2L)", Time: "08:00", Icon: icon("💧")},
				{Description: "Break - Mid Work", Time: "14:30", Icon: icon("☕")},
			},
		},
		{
			ID: "work", Name: "Work Day", Icon: "💼", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Check Emails", Time: "09:00", Icon: icon("📧")},
				{Description: "Team Meeting", Time: "10:00", Icon: icon("👥")},
				{Description: "Project Work", Time: "11:00", Icon: icon("💼")},
				{Description: "Review Tasks", Time: "16:00", Icon: icon("📋")},
			},
		},
		{
			ID: "fitness", Name: "Fitness", Icon: "🏃", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Morning Workout", Time: "06:30", Icon: icon("🏋️")},
				{Description: "Protein Shake", Time: "07:30", Icon: icon("🥤")},
				{Description: "Evening Stretch", Time: "18:00", Icon: icon("🤸")},
			},
		},
		{
			ID: "selfcare", Name: "Self Care", Icon: "🧘", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Meditation", Time: "07:00", Icon: icon("🧘")},
				{Description: "Journal Writing", Time: "20:00", Icon: icon("📝")},
				{Description: "Read Book", Time: "21:00", Icon: icon("📖")},
			},
		},
		{
			ID: "study", Name: "Study Session", Icon: "📚", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Review Notes", Time: "09:00", Icon: icon("📚")},
				{Description: "Practice Problems", Time: "10:30", Icon: icon("✍️")},
				{Description: "Study Break", Time: "12:00", Icon: icon("☕")},
				{Description: "Deep Study Session", Time: "14:00", Icon: icon("🎯")},
			},
		},
		{
			ID: "evening", Name: "Evening Wind-down", Icon: "🌙", IsDefault: true,
			Tasks: []TemplateTask{
				{Description: "Dinner Preparation", Time: "18:00", Icon: icon("🍽️")},
				{Description: "Evening Walk", Time: "19:30", Icon: icon("🚶")},
				{Description: "Night Routine", Time: "21:30", Icon: icon("🌙")},
			},
		},
	}
}
