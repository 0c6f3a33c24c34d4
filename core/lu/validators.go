package lu

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

// NewLearningUnit contains information needed to create a LearningUnit.
type NewLearningUnit struct {
	Title     string      `json:"title" validate:"required"`
	Module    string      `json:"module"`
	DueDate   string      `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Status    string      `json:"status" validate:"omitempty,oneof=Published Draft"`
	Tags      interface{} `json:"tags"` // []string or comma-separated string
	SubjectID string      `json:"subjectId"`
}

func (nu *NewLearningUnit) Validate(validate *validator.Validate) error {
	nu.Title = core.CleanString(nu.Title)
	nu.Module = core.CleanString(nu.Module)
	if nu.Status == "" {
		nu.Status = StatusPublished
	}
	return validate.Struct(nu)
}

// TagList normalizes the polymorphic tags payload; insertion order preserved.
func (nu *NewLearningUnit) TagList() []string {
	return normalizeTags(nu.Tags)
}

// UpdateLearningUnit defines the mutable fields of a LearningUnit.
type UpdateLearningUnit struct {
	Title   string      `json:"title" validate:"required"`
	Module  string      `json:"module"`
	DueDate string      `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Status  string      `json:"status" validate:"omitempty,oneof=Published Draft"`
	Tags    interface{} `json:"tags"`
}

func (uu *UpdateLearningUnit) Validate(validate *validator.Validate) error {
	uu.Title = core.CleanString(uu.Title)
	uu.Module = core.CleanString(uu.Module)
	return validate.Struct(uu)
}

func (uu *UpdateLearningUnit) TagList() []string {
	return normalizeTags(uu.Tags)
}

func normalizeTags(tags interface{}) []string {
	switch v := tags.(type) {
	case nil:
		return []string{}
	case string:
		if v == "" {
			return []string{}
		}
		return core.CleanStrings(strings.Split(v, ","))
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return core.CleanStrings(out)
	case []string:
		return core.CleanStrings(v)
	default:
		return []string{}
	}
}
