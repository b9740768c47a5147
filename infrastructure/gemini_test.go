package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscout/domain"
)

func testGeminiClient(baseURL string) *GeminiClient {
	return &GeminiClient{
		apiKey:  "test-key",
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// geminiTextResponse wraps text the way the generateContent API does.
func geminiTextResponse(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func analysisServer(t *testing.T, analysisJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiTextResponse(t, analysisJSON))
	}))
}

func sampleJobAndApp() (*domain.Job, *domain.Application) {
	job := &domain.Job{
		ID:           "job-1",
		Title:        "Backend Engineer",
		Description:  "Build services",
		Requirements: "Go, SQL, 5+ years",
	}
	app := &domain.Application{
		ID:             "app-1",
		JobID:          "job-1",
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@x.com",
		Responses:      domain.ResponseMap{"f1": "5"},
		ResumeText:     "Experienced Go developer.",
	}
	return job, app
}

func TestAnalyzeCandidateParsesResult(t *testing.T) {
	srv := analysisServer(t, `{"score": 84, "reasoning": "Solid background.", "strengths": ["Go"], "weaknesses": ["No SQL"]}`)
	defer srv.Close()

	job, app := sampleJobAndApp()
	analysis := testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	assert.Equal(t, 84, analysis.Score)
	assert.Equal(t, "Solid background.", analysis.Reasoning)
	assert.Equal(t, []string{"Go"}, analysis.Strengths)
	assert.Equal(t, []string{"No SQL"}, analysis.Weaknesses)
}

func TestAnalyzeCandidateCorruptResponseReturnsSentinel(t *testing.T) {
	srv := analysisServer(t, `this is not JSON {{{`)
	defer srv.Close()

	job, app := sampleJobAndApp()
	analysis := testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	assert.Equal(t, 0, analysis.Score)
	assert.NotEmpty(t, analysis.Reasoning)
	assert.Empty(t, analysis.Strengths)
	assert.Empty(t, analysis.Weaknesses)
}

func TestAnalyzeCandidateOutOfRangeScoreReturnsSentinel(t *testing.T) {
	srv := analysisServer(t, `{"score": 150, "reasoning": "Over-eager model.", "strengths": [], "weaknesses": []}`)
	defer srv.Close()

	job, app := sampleJobAndApp()
	analysis := testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	assert.Equal(t, 0, analysis.Score)
	assert.NotEmpty(t, analysis.Reasoning)
}

func TestAnalyzeCandidateServerErrorReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	job, app := sampleJobAndApp()
	analysis := testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	assert.Equal(t, 0, analysis.Score)
	assert.NotEmpty(t, analysis.Reasoning)
}

func TestAnalyzeCandidatePrefersPDFOverText(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured == nil {
			captured, _ = io.ReadAll(r.Body)
		}
		w.Write(geminiTextResponse(t, `{"score": 70, "reasoning": "ok", "strengths": [], "weaknesses": []}`))
	}))
	defer srv.Close()

	job, app := sampleJobAndApp()
	app.ResumeData = "JVBERi1mYWtlLXBkZg=="
	app.ResumeMimeType = domain.MimePDF

	testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	require.NotNil(t, captured)
	body := string(captured)
	assert.Contains(t, body, "inline_data", "PDF should be attached as a document part")
	assert.Contains(t, body, app.ResumeData)
	assert.NotContains(t, body, "Candidate Resume Text", "pasted text must not be sent when a PDF is attached")
}

func TestAnalyzeCandidateStatesMissingResume(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured == nil {
			captured, _ = io.ReadAll(r.Body)
		}
		w.Write(geminiTextResponse(t, `{"score": 40, "reasoning": "ok", "strengths": [], "weaknesses": []}`))
	}))
	defer srv.Close()

	job, app := sampleJobAndApp()
	app.ResumeText = ""

	testGeminiClient(srv.URL).AnalyzeCandidate(context.Background(), job, app)

	require.NotNil(t, captured)
	assert.Contains(t, string(captured), "No resume provided.")
}

func TestAnalyzeCandidateDisabledClient(t *testing.T) {
	client := &GeminiClient{client: &http.Client{}}
	job, app := sampleJobAndApp()

	analysis := client.AnalyzeCandidate(context.Background(), job, app)
	assert.Equal(t, 0, analysis.Score)
	assert.NotEmpty(t, analysis.Reasoning)
}

func TestGenerateJobDetailsAssignsFreshFieldIDs(t *testing.T) {
	draftJSON := `{
		"title": "Senior Product Designer",
		"department": "Design",
		"description": "Design mobile experiences.",
		"requirements": "Figma, 5+ years",
		"fields": [
			{"id": "ai-made-this-up", "label": "Portfolio URL", "type": "TEXT", "required": true},
			{"label": "Design philosophy", "type": "TEXTAREA", "required": false}
		]
	}`
	srv := analysisServer(t, draftJSON)
	defer srv.Close()

	draft, err := testGeminiClient(srv.URL).GenerateJobDetails(context.Background(), "We need a senior product designer")
	require.NoError(t, err)
	require.Len(t, draft.Fields, 2)

	assert.NotEqual(t, "ai-made-this-up", draft.Fields[0].ID, "model-provided ids must be discarded")
	assert.NotEmpty(t, draft.Fields[0].ID)
	assert.NotEmpty(t, draft.Fields[1].ID)
	assert.NotEqual(t, draft.Fields[0].ID, draft.Fields[1].ID)
	assert.Equal(t, domain.FieldText, draft.Fields[0].Type)
}

func TestGenerateJobDetailsInvalidStructure(t *testing.T) {
	// Missing required keys: valid JSON, wrong shape.
	srv := analysisServer(t, `{"title": "Only a title"}`)
	defer srv.Close()

	_, err := testGeminiClient(srv.URL).GenerateJobDetails(context.Background(), "a role")
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr), "expected *domain.GenerationError, got %T", err)
}

func TestGenerateJobDetailsEmptyPrompt(t *testing.T) {
	_, err := testGeminiClient("http://unused").GenerateJobDetails(context.Background(), "   ")
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestGenerateJobDetailsDisabledClient(t *testing.T) {
	client := &GeminiClient{client: &http.Client{}}
	_, err := client.GenerateJobDetails(context.Background(), "a role")
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", "Here you go:\n{\"a\": 1}\nHope that helps!", `{"a": 1}`},
		{"whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.expected {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
