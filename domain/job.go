package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldType is the closed set of input kinds a screening form can ask for.
type FieldType string

const (
	FieldText        FieldType = "TEXT"
	FieldTextarea    FieldType = "TEXTAREA"
	FieldNumber      FieldType = "NUMBER"
	FieldDropdown    FieldType = "DROPDOWN"
	FieldMultiselect FieldType = "MULTISELECT"
)

// ValidFieldType reports whether t is one of the known field types.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldDropdown, FieldMultiselect:
		return true
	}
	return false
}

// HasOptions reports whether the type carries an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldDropdown || t == FieldMultiselect
}

// FormField is one question on a job's application form. Options are only
// meaningful for DROPDOWN and MULTISELECT; their order is display order.
type FormField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// SetLabel replaces the field label.
func (f *FormField) SetLabel(label string) { f.Label = label }

// SetType switches the field type. The option list is kept so an author can
// toggle between types without losing their edits.
func (f *FormField) SetType(t FieldType) error {
	if !ValidFieldType(t) {
		return fmt.Errorf("unknown field type %q", t)
	}
	f.Type = t
	return nil
}

// SetRequired toggles whether an answer is mandatory.
func (f *FormField) SetRequired(required bool) { f.Required = required }

// AddOption appends a new placeholder option to the field.
func (f *FormField) AddOption() {
	f.Options = append(f.Options, fmt.Sprintf("Option %d", len(f.Options)+1))
}

// UpdateOption replaces the option at index.
func (f *FormField) UpdateOption(index int, value string) error {
	if index < 0 || index >= len(f.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	f.Options[index] = value
	return nil
}

// RemoveOption deletes the option at index, preserving the order of the rest.
func (f *FormField) RemoveOption(index int) error {
	if index < 0 || index >= len(f.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	f.Options = append(f.Options[:index], f.Options[index+1:]...)
	return nil
}

// FieldList is stored as a JSON column.
type FieldList []FormField

func (l FieldList) Value() (driver.Value, error) {
	if l == nil {
		l = FieldList{}
	}
	return json.Marshal(l)
}

func (l *FieldList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into FieldList", value)
}

// Job is a recruiter-authored posting with a custom application form.
// Requirements is free text and doubles as the AI scoring rubric.
type Job struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Title        string    `gorm:"size:255" json:"title"`
	Department   string    `gorm:"size:255" json:"department"`
	Description  string    `gorm:"type:text" json:"description"`
	Requirements string    `gorm:"type:text" json:"requirements"`
	Fields       FieldList `gorm:"type:json" json:"fields"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewJob creates a job with a fresh id and creation timestamp.
func NewJob(title, department, description, requirements string, fields []FormField) *Job {
	return &Job{
		ID:           NewID("job"),
		Title:        title,
		Department:   department,
		Description:  description,
		Requirements: requirements,
		Fields:       fields,
		CreatedAt:    time.Now().UTC(),
	}
}

// AddField appends a blank TEXT question with a fresh id. The placeholder
// options only come into play if the author later switches the type to
// DROPDOWN or MULTISELECT.
func (j *Job) AddField() *FormField {
	j.Fields = append(j.Fields, FormField{
		ID:      NewID("field"),
		Type:    FieldText,
		Options: []string{"Option 1", "Option 2"},
	})
	return &j.Fields[len(j.Fields)-1]
}

// Field returns the field with the given id, or nil.
func (j *Job) Field(id string) *FormField {
	for i := range j.Fields {
		if j.Fields[i].ID == id {
			return &j.Fields[i]
		}
	}
	return nil
}

// RemoveField deletes the field with the given id. Responses already stored
// on applications keep their key; orphaned keys are retained as history.
func (j *Job) RemoveField(id string) bool {
	for i := range j.Fields {
		if j.Fields[i].ID == id {
			j.Fields = append(j.Fields[:i], j.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// ReorderField moves the field at from to position to, shifting the fields
// in between and preserving their relative order.
func (j *Job) ReorderField(from, to int) error {
	if from < 0 || from >= len(j.Fields) || to < 0 || to >= len(j.Fields) {
		return fmt.Errorf("reorder indexes out of range: %d -> %d (have %d fields)", from, to, len(j.Fields))
	}
	moved := j.Fields[from]
	j.Fields = append(j.Fields[:from], j.Fields[from+1:]...)
	j.Fields = append(j.Fields[:to], append(FieldList{moved}, j.Fields[to:]...)...)
	return nil
}

// Validate checks the job is publishable: basic details present, every field
// labelled with a known type, and no two fields sharing an id.
func (j *Job) Validate() error {
	if j.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if j.Description == "" {
		return &ValidationError{Field: "description", Message: "description is required"}
	}
	seen := make(map[string]bool, len(j.Fields))
	for _, f := range j.Fields {
		if f.ID == "" {
			return &ValidationError{Field: "fields", Message: "field id is required"}
		}
		if seen[f.ID] {
			return &ValidationError{Field: "fields", Message: fmt.Sprintf("duplicate field id %q", f.ID)}
		}
		seen[f.ID] = true
		if f.Label == "" {
			return &ValidationError{Field: "fields", Message: fmt.Sprintf("field %s has no label", f.ID)}
		}
		if !ValidFieldType(f.Type) {
			return &ValidationError{Field: "fields", Message: fmt.Sprintf("field %s has unknown type %q", f.ID, f.Type)}
		}
	}
	return nil
}

// JobDraft is the AI-generated starting point for a job posting. It is not
// persisted; the recruiter edits it and creates a Job from it.
type JobDraft struct {
	Title        string      `json:"title"`
	Department   string      `json:"department"`
	Description  string      `json:"description"`
	Requirements string      `json:"requirements"`
	Fields       []FormField `json:"fields"`
}

// NewID returns a prefixed random identifier, e.g. "job-4f0c…".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
