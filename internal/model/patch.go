package model

// TaskPatch is a partial update for a task: nil fields are left untouched,
// set fields are written. ID and CreatedAt are never part of a patch.
type TaskPatch struct {
	Date        *string
	Description *string

	// Time sets the HH:MM time of day; a pointer to the empty string
	// clears it to untimed.
	Time *string

	// IsCompleted sets the completion flag. The store keeps CompletedAt
	// consistent: setting true stamps it (if not already stamped),
	// setting false clears it.
	IsCompleted *bool

	// TemplateID and TemplateName adjust provenance; pointers to the
	// empty string clear them.
	TemplateID   *string
	TemplateName *string
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p.Date == nil && p.Description == nil && p.Time == nil &&
		p.IsCompleted == nil && p.TemplateID == nil && p.TemplateName == nil
}

// TemplatePatch is a partial update for a template. Nil fields are left
// untouched. ID, IsDefault and CreatedAt are never part of a patch.
type TemplatePatch struct {
	Name  *string
	Icon  *string
	Tasks *[]TemplateTask
}

// IsZero reports whether the patch changes nothing.
func (p TemplatePatch) IsZero() bool {
	return p.Name == nil && p.Icon == nil && p.Tasks == nil
}
