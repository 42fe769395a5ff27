package repository

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nhle/habito/internal/datekey"
	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/timeutil"
)

// validateDate checks a DD.MM.YYYY date key under the given field name.
func validateDate(field, date string) error {
	if strings.TrimSpace(date) == "" {
		return model.NewValidationError(field, "date is required")
	}
	if !datekey.Valid(date) {
		return model.NewValidationError(field, "must be a valid DD.MM.YYYY date")
	}
	return nil
}

// validateDescription trims and bounds-checks a task description,
// returning the trimmed value.
func validateDescription(field, description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "", model.NewValidationError(field, "description is required")
	}
	if len(trimmed) > model.MaxDescriptionLength {
		return "", model.NewValidationError(field,
			fmt.Sprintf("must be %d characters or less", model.MaxDescriptionLength))
	}
	return trimmed, nil
}

// validateTime checks an HH:MM time of day.
func validateTime(field, t string) error {
	if !timeutil.IsValid(t) {
		return model.NewValidationError(field, "must be a valid HH:MM time")
	}
	return nil
}

// validateTemplateName trims and bounds-checks a template name,
// returning the trimmed value.
func validateTemplateName(field, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", model.NewValidationError(field, "name is required")
	}
	if len(trimmed) > model.MaxTemplateNameLength {
		return "", model.NewValidationError(field,
			fmt.Sprintf("must be %d characters or less", model.MaxTemplateNameLength))
	}
	return trimmed, nil
}

// validateTemplateIcon checks the icon is a single emoji or character.
// The limit is in runes so a base emoji plus variation selector passes.
func validateTemplateIcon(field, icon string) error {
	if icon == "" {
		return model.NewValidationError(field, "icon is required")
	}
	if utf8.RuneCountInString(icon) > model.MaxTemplateIconLength {
		return model.NewValidationError(field, "must be a single emoji")
	}
	return nil
}

// validateID rejects blank identifiers before they reach the store.
func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return model.NewValidationError(field, "id is required")
	}
	return nil
}
