package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/store"
	"github.com/nhle/habito/tests/testutil"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func mustCreateTask(t *testing.T, s store.Store, date, description string, taskTime *string) *model.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), model.Task{
		Date:        date,
		Description: description,
		Time:        taskTime,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

// ---------------------------------------------------------------------------
// Initialization and seeding
// ---------------------------------------------------------------------------

func TestNewSQLiteStore_SeedsDefaultTemplates(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestStore(t)

	templates, err := s.GetAllTemplates(context.Background())
	if err != nil {
		t.Fatalf("failed to list templates: %v", err)
	}
	if len(templates) != len(model.DefaultTemplates()) {
		t.Fatalf("expected %d seeded templates, got %d",
			len(model.DefaultTemplates()), len(templates))
	}
	for _, tpl := range templates {
		if !tpl.IsDefault {
			t.Errorf("seeded template %s should be marked default", tpl.ID)
		}
		if len(tpl.Tasks) == 0 {
			t.Errorf("seeded template %s has no blueprint tasks", tpl.ID)
		}
	}
}

func TestNewSQLiteStore_SeedsOnlyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "habito.db")

	s1, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	// Delete one default so re-seeding would be observable.
	if err := s1.DeleteTemplate(ctx, "daily"); err != nil {
		t.Fatalf("failed to delete template: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	s2, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetTemplate(ctx, "daily"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted default template came back after reopen: %v", err)
	}
	templates, err := s2.GetAllTemplates(ctx)
	if err != nil {
		t.Fatalf("failed to list templates: %v", err)
	}
	if len(templates) != len(model.DefaultTemplates())-1 {
		t.Errorf("expected %d templates after reopen, got %d",
			len(model.DefaultTemplates())-1, len(templates))
	}
}

func TestSQLiteStore_ClosedStoreRejectsOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	// Closing twice is fine.
	if err := s.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if _, err := s.GetTasksByDate(ctx, "01.01.2026"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := s.SetRating(ctx, "01.01.2026", 5); !errors.Is(err, store.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func TestSQLiteStore_CreateAndGetTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	created := mustCreateTask(t, s, "05.03.2026", "Morning Run", strPtr("06:00"))
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected generated created_at")
	}

	got, err := s.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.Description != "Morning Run" || got.Date != "05.03.2026" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.Time == nil || *got.Time != "06:00" {
		t.Errorf("expected time 06:00, got %v", got.Time)
	}
	if got.IsCompleted || got.CompletedAt != nil {
		t.Errorf("new task should be incomplete, got %+v", got)
	}
}

func TestSQLiteStore_GetTaskNotFound(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestStore(t)

	if _, err := s.GetTask(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_GetTasksByDate_Ordering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	mustCreateTask(t, s, "10.04.2026", "untimed", nil)
	mustCreateTask(t, s, "10.04.2026", "evening", strPtr("21:00"))
	mustCreateTask(t, s, "10.04.2026", "morning", strPtr("07:30"))
	mustCreateTask(t, s, "11.04.2026", "other day", nil)

	tasks, err := s.GetTasksByDate(ctx, "10.04.2026")
	if err != nil {
		t.Fatalf("failed to query tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	got := []string{tasks[0].Description, tasks[1].Description, tasks[2].Description}
	want := []string{"morning", "evening", "untimed"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSQLiteStore_GetTasksByMonth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	mustCreateTask(t, s, "01.02.2026", "first", nil)
	mustCreateTask(t, s, "28.02.2026", "last", nil)
	mustCreateTask(t, s, "01.03.2026", "next month", nil)
	mustCreateTask(t, s, "01.02.2027", "next year", nil)

	tasks, err := s.GetTasksByMonth(ctx, time.February, 2026)
	if err != nil {
		t.Fatalf("failed to query month: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Date != "01.02.2026" || tasks[1].Date != "28.02.2026" {
		t.Errorf("unexpected order: %s, %s", tasks[0].Date, tasks[1].Date)
	}
}

func TestSQLiteStore_UpdateTask_PatchSemantics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	task := mustCreateTask(t, s, "15.05.2026", "Review Notes", strPtr("09:00"))

	updated, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{
		Description: strPtr("Review Lecture Notes"),
	})
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if updated.Description != "Review Lecture Notes" {
		t.Errorf("description not updated: %q", updated.Description)
	}
	if updated.Time == nil || *updated.Time != "09:00" {
		t.Errorf("unset patch field changed time: %v", updated.Time)
	}
	if updated.ID != task.ID || !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Error("id or created_at changed on update")
	}

	// Pointer to the empty string clears the optional column.
	cleared, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Time: strPtr("")})
	if err != nil {
		t.Fatalf("failed to clear time: %v", err)
	}
	if cleared.Time != nil {
		t.Errorf("expected cleared time, got %v", cleared.Time)
	}
}

func TestSQLiteStore_UpdateTask_CompletionInvariant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	task := mustCreateTask(t, s, "15.05.2026", "Meditation", nil)

	done, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{IsCompleted: boolPtr(true)})
	if err != nil {
		t.Fatalf("failed to mark complete: %v", err)
	}
	if !done.IsCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed with stamp, got %+v", done)
	}
	firstStamp := *done.CompletedAt

	// Re-completing an already completed task keeps the original stamp.
	again, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{IsCompleted: boolPtr(true)})
	if err != nil {
		t.Fatalf("failed to re-complete: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(firstStamp) {
		t.Errorf("completed_at moved on re-complete: %v vs %v", again.CompletedAt, firstStamp)
	}

	undone, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{IsCompleted: boolPtr(false)})
	if err != nil {
		t.Fatalf("failed to un-complete: %v", err)
	}
	if undone.IsCompleted || undone.CompletedAt != nil {
		t.Errorf("expected incomplete with no stamp, got %+v", undone)
	}
}

func TestSQLiteStore_UpdateTask_NotFound(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestStore(t)

	_, err := s.UpdateTask(context.Background(), "missing",
		model.TaskPatch{Description: strPtr("x")})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_ToggleTaskComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	task := mustCreateTask(t, s, "20.06.2026", "Evening Walk", strPtr("19:30"))

	on, err := s.ToggleTaskComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if !on.IsCompleted || on.CompletedAt == nil {
		t.Fatalf("expected completed with stamp, got %+v", on)
	}

	off, err := s.ToggleTaskComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to toggle back: %v", err)
	}
	if off.IsCompleted || off.CompletedAt != nil {
		t.Errorf("expected incomplete with no stamp, got %+v", off)
	}

	if _, err := s.ToggleTaskComplete(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_DeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	task := mustCreateTask(t, s, "01.07.2026", "Dinner Preparation", nil)

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Errorf("deleting missing task should not error: %v", err)
	}
}

func TestSQLiteStore_DeleteTasksByDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	mustCreateTask(t, s, "02.07.2026", "a", nil)
	mustCreateTask(t, s, "02.07.2026", "b", nil)
	keep := mustCreateTask(t, s, "03.07.2026", "c", nil)

	if err := s.DeleteTasksByDate(ctx, "02.07.2026"); err != nil {
		t.Fatalf("failed to delete by date: %v", err)
	}

	gone, err := s.GetTasksByDate(ctx, "02.07.2026")
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(gone) != 0 {
		t.Errorf("expected no tasks, got %d", len(gone))
	}
	if _, err := s.GetTask(ctx, keep.ID); err != nil {
		t.Errorf("task on another date was deleted: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Daily ratings
// ---------------------------------------------------------------------------

func TestSQLiteStore_SetRating_InsertThenUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	first, err := s.SetRating(ctx, "10.08.2026", 6)
	if err != nil {
		t.Fatalf("failed to set rating: %v", err)
	}
	if first.Rating != 6 || first.ID == "" {
		t.Fatalf("unexpected rating %+v", first)
	}

	time.Sleep(10 * time.Millisecond)

	second, err := s.SetRating(ctx, "10.08.2026", 9)
	if err != nil {
		t.Fatalf("failed to re-rate: %v", err)
	}
	if second.Rating != 9 {
		t.Errorf("expected rating 9, got %d", second.Rating)
	}
	if second.ID != first.ID {
		t.Errorf("id changed on re-rate: %s vs %s", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on re-rate")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v vs %v", second.UpdatedAt, first.UpdatedAt)
	}
}

func TestSQLiteStore_SetRating_Bounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for _, ok := range []int{0, 10} {
		if _, err := s.SetRating(ctx, "11.08.2026", ok); err != nil {
			t.Errorf("rating %d should be accepted: %v", ok, err)
		}
	}
	for _, bad := range []int{-1, 11, 100} {
		if _, err := s.SetRating(ctx, "11.08.2026", bad); !errors.Is(err, store.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", bad, err)
		}
	}
}

func TestSQLiteStore_GetRating_AbsentIsNil(t *testing.T) {
	t.Parallel()
	s := testutil.NewTestStore(t)

	r, err := s.GetRating(context.Background(), "12.08.2026")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil for unrated date, got %+v", r)
	}
}

func TestSQLiteStore_GetRatingsForMonth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for _, d := range []string{"03.09.2026", "01.09.2026", "30.09.2026", "01.10.2026"} {
		if _, err := s.SetRating(ctx, d, 7); err != nil {
			t.Fatalf("failed to set rating for %s: %v", d, err)
		}
	}

	ratings, err := s.GetRatingsForMonth(ctx, time.September, 2026)
	if err != nil {
		t.Fatalf("failed to query month: %v", err)
	}
	if len(ratings) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(ratings))
	}
	if ratings[0].Date != "01.09.2026" || ratings[2].Date != "30.09.2026" {
		t.Errorf("unexpected order: %s .. %s", ratings[0].Date, ratings[2].Date)
	}
}

func TestSQLiteStore_DeleteRating(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if _, err := s.SetRating(ctx, "15.09.2026", 4); err != nil {
		t.Fatalf("failed to set rating: %v", err)
	}
	if err := s.DeleteRating(ctx, "15.09.2026"); err != nil {
		t.Fatalf("failed to delete rating: %v", err)
	}
	r, err := s.GetRating(ctx, "15.09.2026")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil after delete, got %+v", r)
	}
	if err := s.DeleteRating(ctx, "15.09.2026"); err != nil {
		t.Errorf("deleting missing rating should not error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func TestSQLiteStore_AddTemplate_GeneratesCustomID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	tpl, err := s.AddTemplate(ctx, model.Template{
		Name: "Weekend",
		Icon: "🏖️",
		Tasks: []model.TemplateTask{
			{Description: "Sleep In", Time: "09:00"},
		},
	})
	if err != nil {
		t.Fatalf("failed to add template: %v", err)
	}
	if len(tpl.ID) <= len(model.CustomTemplateIDPrefix) ||
		tpl.ID[:len(model.CustomTemplateIDPrefix)] != model.CustomTemplateIDPrefix {
		t.Errorf("expected namespaced custom id, got %q", tpl.ID)
	}
	if tpl.IsDefault {
		t.Error("custom template must not be default")
	}

	got, err := s.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("failed to get template: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Description != "Sleep In" {
		t.Errorf("blueprint tasks did not round-trip: %+v", got.Tasks)
	}
}

func TestSQLiteStore_GetAllTemplates_DefaultsFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if _, err := s.AddTemplate(ctx, model.Template{Name: "AAA Custom", Icon: "⭐"}); err != nil {
		t.Fatalf("failed to add template: %v", err)
	}

	templates, err := s.GetAllTemplates(ctx)
	if err != nil {
		t.Fatalf("failed to list templates: %v", err)
	}
	defaults := len(model.DefaultTemplates())
	if len(templates) != defaults+1 {
		t.Fatalf("expected %d templates, got %d", defaults+1, len(templates))
	}
	for i, tpl := range templates {
		if i < defaults && !tpl.IsDefault {
			t.Errorf("position %d: expected a default template, got %s", i, tpl.ID)
		}
	}
	if templates[defaults].Name != "AAA Custom" {
		t.Errorf("expected custom template last, got %s", templates[defaults].Name)
	}
}

func TestSQLiteStore_UpdateTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	tpl, err := s.AddTemplate(ctx, model.Template{
		Name:  "Old Name",
		Icon:  "📝",
		Tasks: []model.TemplateTask{{Description: "One", Time: "10:00"}},
	})
	if err != nil {
		t.Fatalf("failed to add template: %v", err)
	}

	newTasks := []model.TemplateTask{
		{Description: "One", Time: "10:00"},
		{Description: "Two", Time: "11:00"},
	}
	updated, err := s.UpdateTemplate(ctx, tpl.ID, model.TemplatePatch{
		Name:  strPtr("New Name"),
		Tasks: &newTasks,
	})
	if err != nil {
		t.Fatalf("failed to update template: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.Icon != "📝" {
		t.Errorf("unset patch field changed icon: %q", updated.Icon)
	}
	if len(updated.Tasks) != 2 {
		t.Errorf("expected 2 blueprint tasks, got %d", len(updated.Tasks))
	}

	if _, err := s.UpdateTemplate(ctx, "missing", model.TemplatePatch{Name: strPtr("x")}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_DeleteTemplate_KeepsProvenance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	task, err := s.CreateTask(ctx, model.Task{
		Date:         "01.10.2026",
		Description:  "Check Emails",
		TemplateID:   strPtr("work"),
		TemplateName: strPtr("Work Day"),
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if err := s.DeleteTemplate(ctx, "work"); err != nil {
		t.Fatalf("failed to delete template: %v", err)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.TemplateID == nil || *got.TemplateID != "work" {
		t.Errorf("provenance lost after template delete: %v", got.TemplateID)
	}
	if got.TemplateName == nil || *got.TemplateName != "Work Day" {
		t.Errorf("template name lost after delete: %v", got.TemplateName)
	}
}

// ---------------------------------------------------------------------------
// Settings and stats
// ---------------------------------------------------------------------------

func TestSQLiteStore_Settings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if _, err := s.GetSetting(ctx, "theme"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset key, got %v", err)
	}

	if err := s.SetSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("failed to set setting: %v", err)
	}
	if err := s.SetSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("failed to overwrite setting: %v", err)
	}
	v, err := s.GetSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("failed to get setting: %v", err)
	}
	if v != "light" {
		t.Errorf("expected light, got %q", v)
	}
}

func TestSQLiteStore_SettingsJSON(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	in := model.ReminderConfig{Enabled: true, DefaultTime: "08:30", QuietStart: "22:00", QuietEnd: "07:00"}
	if err := s.SetSettingJSON(ctx, "reminders", in); err != nil {
		t.Fatalf("failed to set JSON setting: %v", err)
	}

	var out model.ReminderConfig
	if err := s.GetSettingJSON(ctx, "reminders", &out); err != nil {
		t.Fatalf("failed to get JSON setting: %v", err)
	}
	if out != in {
		t.Errorf("JSON setting did not round-trip: %+v vs %+v", out, in)
	}
}

func TestSQLiteStore_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	mustCreateTask(t, s, "01.11.2026", "a", nil)
	mustCreateTask(t, s, "01.11.2026", "b", nil)
	if _, err := s.SetRating(ctx, "01.11.2026", 8); err != nil {
		t.Fatalf("failed to set rating: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if st.Tasks != 2 {
		t.Errorf("expected 2 tasks, got %d", st.Tasks)
	}
	if st.Ratings != 1 {
		t.Errorf("expected 1 rating, got %d", st.Ratings)
	}
	if st.Templates != len(model.DefaultTemplates()) {
		t.Errorf("expected %d templates, got %d", len(model.DefaultTemplates()), st.Templates)
	}
}
