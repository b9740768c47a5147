package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"talentscout/domain"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Models tried in order until one answers. The free tier rotates which
// aliases are actually served.
var geminiModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-flash-latest",
}

// GeminiClient talks to the Gemini generateContent REST API. With no API key
// configured the client is disabled: generation fails with a GenerationError
// and assessment degrades to the sentinel result.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiClient reads GEMINI_API_KEY from the environment.
func NewGeminiClient() *GeminiClient {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Warn("GEMINI_API_KEY is not set: AI generation and assessment are disabled")
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (g *GeminiClient) Enabled() bool { return g.apiKey != "" }

// jobDraftSchema validates what the model claims is a job draft before any
// of it reaches the recruiter's editor.
const jobDraftSchema = `{
  "type": "object",
  "required": ["title", "department", "description", "requirements", "fields"],
  "properties": {
    "title": {"type": "string"},
    "department": {"type": "string"},
    "description": {"type": "string"},
    "requirements": {"type": "string"},
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "type", "required"],
        "properties": {
          "label": {"type": "string"},
          "type": {"type": "string", "enum": ["TEXT", "TEXTAREA", "NUMBER", "DROPDOWN", "MULTISELECT"]},
          "required": {"type": "boolean"},
          "options": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// analysisSchema bounds the score so an out-of-range response is treated as
// a failed assessment rather than stored.
const analysisSchema = `{
  "type": "object",
  "required": ["score", "reasoning", "strengths", "weaknesses"],
  "properties": {
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "reasoning": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}}
  }
}`

// GenerateJobDetails turns a free-text role description into a structured
// job draft. Every field in the draft gets a freshly generated id, whatever
// the model returned. Failures come back as *domain.GenerationError; the
// client never retries on its own.
func (g *GeminiClient) GenerateJobDetails(ctx context.Context, prompt string) (*domain.JobDraft, error) {
	if !g.Enabled() {
		return nil, &domain.GenerationError{Reason: "AI features are disabled: GEMINI_API_KEY is not set"}
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, &domain.GenerationError{Reason: "prompt is empty"}
	}

	instruction := fmt.Sprintf(`You are an expert HR consultant.
Create a detailed job posting based on this user request: %q.

Return a JSON object with:
- title: A professional job title.
- department: The most likely department.
- requirements: A list of key requirements (skills, experience) as a text block.
- description: A compelling job description (approx 50 words).
- fields: An array of 3-5 relevant screening questions to ask the applicant.
  For 'fields', include label, type (TEXT, TEXTAREA, NUMBER, DROPDOWN, MULTISELECT),
  required (boolean), and options (array of strings) if type is DROPDOWN/MULTISELECT.`, prompt)

	parts := []map[string]interface{}{{"text": instruction}}
	raw, err := g.generate(ctx, parts, jobDraftResponseSchema())
	if err != nil {
		return nil, &domain.GenerationError{Reason: "model call failed", Err: err}
	}

	if err := validateAgainst(jobDraftSchema, raw); err != nil {
		return nil, &domain.GenerationError{Reason: "response failed schema validation", Err: err}
	}

	var draft domain.JobDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, &domain.GenerationError{Reason: "response is not valid JSON", Err: err}
	}

	// The model may invent ids; discard them so uniqueness is ours to keep.
	for i := range draft.Fields {
		draft.Fields[i].ID = domain.NewID("field")
	}
	return &draft, nil
}

// AnalyzeCandidate scores an application against its job. It never returns
// an error: any call, parse, or schema failure collapses into the sentinel
// analysis so one bad document cannot halt a batch.
func (g *GeminiClient) AnalyzeCandidate(ctx context.Context, job *domain.Job, app *domain.Application) domain.CandidateAnalysis {
	if !g.Enabled() {
		return domain.FailedAnalysis("AI analysis is disabled: no API key configured.")
	}

	responses, _ := json.Marshal(app.Responses)
	prompt := fmt.Sprintf(`Role: Expert Technical Recruiter.
Task: Evaluate a job application against a job description.

Job Title: %s
Job Description: %s
Key Requirements: %s

Candidate Name: %s
Candidate Form Responses: %s

Output: Provide a structured JSON assessment.
- score: 0-100 (integer) representing fit.
- reasoning: A brief summary of why this score was given (max 2 sentences).
- strengths: Array of strings (key matching skills).
- weaknesses: Array of strings (missing skills or concerns).`,
		job.Title, job.Description, job.Requirements, app.CandidateName, responses)

	parts := []map[string]interface{}{{"text": prompt}}

	// Resume evidence, exactly one branch: PDF bytes beat pasted text.
	switch {
	case app.ResumeData != "" && app.ResumeMimeType == domain.MimePDF:
		parts = append(parts,
			map[string]interface{}{
				"inline_data": map[string]interface{}{
					"mime_type": app.ResumeMimeType,
					"data":      app.ResumeData,
				},
			},
			map[string]interface{}{"text": "Evaluate the attached resume PDF."},
		)
	case app.ResumeText != "":
		parts = append(parts, map[string]interface{}{"text": fmt.Sprintf("Candidate Resume Text: %q", app.ResumeText)})
	default:
		parts = append(parts, map[string]interface{}{"text": "No resume provided."})
	}

	raw, err := g.generate(ctx, parts, analysisResponseSchema())
	if err != nil {
		log.Warnf("candidate analysis failed for %s: %v", app.ID, err)
		return domain.FailedAnalysis("AI analysis failed due to a technical error or invalid file format.")
	}

	if err := validateAgainst(analysisSchema, raw); err != nil {
		log.Warnf("candidate analysis for %s returned invalid structure: %v", app.ID, err)
		return domain.FailedAnalysis("AI analysis returned an invalid result format.")
	}

	var analysis domain.CandidateAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return domain.FailedAnalysis("AI analysis returned unparsable JSON.")
	}
	if analysis.Strengths == nil {
		analysis.Strengths = []string{}
	}
	if analysis.Weaknesses == nil {
		analysis.Weaknesses = []string{}
	}
	return analysis
}

// generate performs one generateContent call, walking the model fallback
// list, and returns the cleaned JSON text of the first candidate.
func (g *GeminiClient) generate(ctx context.Context, parts []map[string]interface{}, responseSchema map[string]interface{}) (string, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":        0.2,
			"response_mime_type": "application/json",
			"response_schema":    responseSchema,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, model := range geminiModels {
		text, err := g.callModel(ctx, model, jsonData)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Debugf("gemini model %s failed: %v", model, err)
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (g *GeminiClient) callModel(ctx context.Context, model string, jsonData []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse map[string]interface{}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	text, err := extractTextFromResponse(apiResponse)
	if err != nil {
		return "", err
	}
	return cleanJSONResponse(text), nil
}

func extractTextFromResponse(apiResponse map[string]interface{}) (string, error) {
	candidates, ok := apiResponse["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	first, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid candidate format")
	}
	content, ok := first["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid content format")
	}
	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("no parts in content")
	}
	part, ok := parts[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid part format")
	}
	text, ok := part["text"].(string)
	if !ok {
		return "", fmt.Errorf("no text in part")
	}
	return text, nil
}

// cleanJSONResponse strips markdown fences and surrounding prose that some
// models wrap around JSON output despite the mime-type hint.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}

func validateAgainst(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// The response_schema constraints sent to the API use Gemini's own schema
// dialect (upper-case type names), distinct from the local JSON Schemas.

func jobDraftResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"title":        map[string]interface{}{"type": "STRING"},
			"department":   map[string]interface{}{"type": "STRING"},
			"description":  map[string]interface{}{"type": "STRING"},
			"requirements": map[string]interface{}{"type": "STRING"},
			"fields": map[string]interface{}{
				"type": "ARRAY",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"label":    map[string]interface{}{"type": "STRING"},
						"type":     map[string]interface{}{"type": "STRING", "enum": []string{"TEXT", "TEXTAREA", "NUMBER", "DROPDOWN", "MULTISELECT"}},
						"required": map[string]interface{}{"type": "BOOLEAN"},
						"options":  map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
					},
					"required": []string{"label", "type", "required"},
				},
			},
		},
		"required": []string{"title", "department", "description", "requirements", "fields"},
	}
}

func analysisResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"score":      map[string]interface{}{"type": "INTEGER"},
			"reasoning":  map[string]interface{}{"type": "STRING"},
			"strengths":  map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"weaknesses": map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
		},
		"required": []string{"score", "reasoning", "strengths", "weaknesses"},
	}
}
