package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MimePDF is the only resume content type whose raw bytes are kept for
// multimodal evaluation.
const MimePDF = "application/pdf"

// SelectionDelimiter joins a MULTISELECT answer into its single stored
// string. Options whose own text contains the delimiter will not round-trip;
// the form author is expected to avoid it.
const SelectionDelimiter = ", "

// JoinSelections serializes the chosen options of a MULTISELECT answer.
func JoinSelections(selected []string) string {
	return strings.Join(selected, SelectionDelimiter)
}

// SplitSelections recovers the chosen options from a stored answer. An empty
// answer means nothing was selected.
func SplitSelections(answer string) []string {
	if answer == "" {
		return nil
	}
	return strings.Split(answer, SelectionDelimiter)
}

// ResponseMap maps FormField ids to answers, stored as a JSON column.
type ResponseMap map[string]string

func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		m = ResponseMap{}
	}
	return json.Marshal(m)
}

func (m *ResponseMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("cannot scan %T into ResponseMap", value)
}

// CandidateAnalysis is the AI fit assessment attached to one application.
// Score is an integer between 0 and 100 inclusive.
type CandidateAnalysis struct {
	Score      int      `json:"score"`
	Reasoning  string   `json:"reasoning"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

func (c *CandidateAnalysis) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *CandidateAnalysis) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("cannot scan %T into CandidateAnalysis", value)
}

// FailedAnalysis is the sentinel returned when AI assessment could not
// produce a usable result. It is persisted like any other analysis so the
// recruiter always has something displayable once scoring was attempted.
func FailedAnalysis(reason string) CandidateAnalysis {
	return CandidateAnalysis{
		Score:      0,
		Reasoning:  reason,
		Strengths:  []string{},
		Weaknesses: []string{},
	}
}

// Application is one candidate's submission against a job. ResumeData holds
// the base64-encoded raw document and is only set for PDF uploads.
type Application struct {
	ID             string             `gorm:"primaryKey;size:64" json:"id"`
	JobID          string             `gorm:"size:64;index" json:"jobId"`
	CandidateName  string             `gorm:"size:255" json:"candidateName"`
	CandidateEmail string             `gorm:"size:255" json:"candidateEmail"`
	Responses      ResponseMap        `gorm:"type:json" json:"responses"`
	ResumeText     string             `gorm:"type:text" json:"resumeText"`
	ResumeData     string             `gorm:"type:longtext" json:"resumeData,omitempty"`
	ResumeMimeType string             `gorm:"size:64" json:"resumeMimeType,omitempty"`
	SubmittedAt    time.Time          `json:"submittedAt"`
	AiAnalysis     *CandidateAnalysis `gorm:"type:json" json:"aiAnalysis,omitempty"`
}

// NewApplication creates an application with a fresh id and submission
// timestamp. The analysis starts absent.
func NewApplication(jobID, name, email string, responses ResponseMap) *Application {
	return &Application{
		ID:             NewID("app"),
		JobID:          jobID,
		CandidateName:  name,
		CandidateEmail: email,
		Responses:      responses,
		SubmittedAt:    time.Now().UTC(),
	}
}

// Analyzed reports whether an AI assessment has been attempted and stored.
func (a *Application) Analyzed() bool { return a.AiAnalysis != nil }

// HasResume reports whether any resume evidence was submitted.
func (a *Application) HasResume() bool {
	return a.ResumeData != "" || a.ResumeText != ""
}

// ValidateSubmission checks candidate input against the job's form schema
// before an application may be constructed. Every required field needs a
// non-empty answer; for MULTISELECT that means at least one selected option.
func ValidateSubmission(job *Job, responses ResponseMap, hasResume bool) error {
	if !hasResume {
		return &ValidationError{Field: "resume", Message: "a resume file or pasted resume text is required"}
	}
	for _, f := range job.Fields {
		if !f.Required {
			continue
		}
		answer := strings.TrimSpace(responses[f.ID])
		if f.Type == FieldMultiselect {
			if len(SplitSelections(answer)) == 0 {
				return &ValidationError{Field: f.ID, Message: fmt.Sprintf("%q requires at least one selection", f.Label)}
			}
			continue
		}
		if answer == "" {
			return &ValidationError{Field: f.ID, Message: fmt.Sprintf("%q is required", f.Label)}
		}
	}
	return nil
}
