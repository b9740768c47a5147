package domain

import (
	"reflect"
	"testing"
)

func TestSelectionsRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
	}{
		{"two options", []string{"Remote", "Hybrid"}},
		{"single option", []string{"Remote"}},
		{"nothing selected", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSelections(JoinSelections(tt.selected))
			if !reflect.DeepEqual(got, tt.selected) {
				t.Errorf("round trip: expected %v, got %v", tt.selected, got)
			}
		})
	}
}

func backendJob() *Job {
	return &Job{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Description: "Build services",
		Fields: FieldList{
			{ID: "f1", Label: "Years of experience", Type: FieldNumber, Required: true},
		},
	}
}

func TestValidateSubmissionRejectsMissingRequiredField(t *testing.T) {
	err := ValidateSubmission(backendJob(), ResponseMap{}, true)
	if err == nil {
		t.Fatal("expected rejection for empty required field")
	}
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if vErr.Field != "f1" {
		t.Errorf("expected violation on f1, got %q", vErr.Field)
	}
}

func TestValidateSubmissionAccepts(t *testing.T) {
	if err := ValidateSubmission(backendJob(), ResponseMap{"f1": "5"}, true); err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}
}

func TestValidateSubmissionRequiresResume(t *testing.T) {
	if err := ValidateSubmission(backendJob(), ResponseMap{"f1": "5"}, false); err == nil {
		t.Fatal("expected rejection without a resume")
	}
}

func TestValidateSubmissionMultiselect(t *testing.T) {
	job := &Job{
		ID: "job-2",
		Fields: FieldList{
			{ID: "m1", Label: "Work setup", Type: FieldMultiselect, Required: true, Options: []string{"Remote", "Hybrid"}},
		},
	}

	if err := ValidateSubmission(job, ResponseMap{"m1": ""}, true); err == nil {
		t.Fatal("expected rejection when nothing is selected")
	}
	if err := ValidateSubmission(job, ResponseMap{"m1": JoinSelections([]string{"Remote", "Hybrid"})}, true); err != nil {
		t.Fatalf("expected valid multiselect submission, got %v", err)
	}
}

func TestValidateSubmissionIgnoresOptionalFields(t *testing.T) {
	job := &Job{
		ID: "job-3",
		Fields: FieldList{
			{ID: "f1", Label: "Portfolio", Type: FieldText, Required: false},
		},
	}
	if err := ValidateSubmission(job, ResponseMap{}, true); err != nil {
		t.Fatalf("optional fields must not block submission, got %v", err)
	}
}

func TestNewApplicationStartsUnanalyzed(t *testing.T) {
	app := NewApplication("job-1", "Jane Doe", "jane@x.com", ResponseMap{"f1": "5"})

	if app.ID == "" {
		t.Fatal("expected a generated id")
	}
	if app.Analyzed() {
		t.Error("expected new application to have no analysis")
	}
	if app.SubmittedAt.IsZero() {
		t.Error("expected submission timestamp to be set")
	}

	other := NewApplication("job-1", "John Doe", "john@x.com", nil)
	if other.ID == app.ID {
		t.Error("expected unique application ids")
	}
}

func TestFailedAnalysisSentinel(t *testing.T) {
	a := FailedAnalysis("AI analysis failed due to a technical error.")

	if a.Score != 0 {
		t.Errorf("expected sentinel score 0, got %d", a.Score)
	}
	if a.Reasoning == "" {
		t.Error("expected a non-empty reasoning")
	}
	if a.Strengths == nil || len(a.Strengths) != 0 {
		t.Errorf("expected empty strengths, got %v", a.Strengths)
	}
	if a.Weaknesses == nil || len(a.Weaknesses) != 0 {
		t.Errorf("expected empty weaknesses, got %v", a.Weaknesses)
	}
}
