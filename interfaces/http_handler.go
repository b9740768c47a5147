package interfaces

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"talentscout/domain"
	"talentscout/export"
	"talentscout/infrastructure"
	"talentscout/worker"
)

// AIClient is the slice of the Gemini client the handlers depend on.
type AIClient interface {
	worker.Analyzer
	Enabled() bool
	GenerateJobDetails(ctx context.Context, prompt string) (*domain.JobDraft, error)
}

// HTTPHandler wires the recruiting API onto a gin router.
type HTTPHandler struct {
	Store    domain.Store
	AI       AIClient
	Assessor *worker.Assessor
	Queue    worker.Queue
}

func NewHTTPHandler(router *gin.Engine, store domain.Store, ai AIClient, assessor *worker.Assessor, queue worker.Queue) {
	h := &HTTPHandler{Store: store, AI: ai, Assessor: assessor, Queue: queue}

	api := router.Group("/api")

	api.GET("/health", h.Health)

	api.GET("/jobs", h.ListJobs)
	api.POST("/jobs", h.CreateJob)
	api.POST("/jobs/generate", h.GenerateJob)
	api.GET("/jobs/:id", h.GetJob)

	api.POST("/jobs/:id/fields", h.AddField)
	api.POST("/jobs/:id/fields/reorder", h.ReorderFields)
	api.PATCH("/jobs/:id/fields/:fieldID", h.UpdateField)
	api.DELETE("/jobs/:id/fields/:fieldID", h.RemoveField)
	api.POST("/jobs/:id/fields/:fieldID/options", h.AddOption)
	api.PATCH("/jobs/:id/fields/:fieldID/options/:index", h.UpdateOption)
	api.DELETE("/jobs/:id/fields/:fieldID/options/:index", h.RemoveOption)

	api.GET("/jobs/:id/applications", h.ListApplications)
	api.POST("/jobs/:id/applications", h.SubmitApplication)
	api.POST("/jobs/:id/analyze", h.AnalyzeAll)
	api.GET("/jobs/:id/report", h.ExportReport)

	api.POST("/applications/:id/analyze", h.AnalyzeApplication)
	api.GET("/applications/:id/resume", h.ResumeText)
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_enabled": h.AI.Enabled()})
}

// --- Jobs ---

func (h *HTTPHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Store.GetJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load jobs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

type createJobRequest struct {
	Title        string             `json:"title"`
	Department   string             `json:"department"`
	Description  string             `json:"description"`
	Requirements string             `json:"requirements"`
	Fields       []domain.FormField `json:"fields"`
}

func (h *HTTPHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}

	for i := range req.Fields {
		if req.Fields[i].ID == "" {
			req.Fields[i].ID = domain.NewID("field")
		}
	}

	job := domain.NewJob(req.Title, req.Department, req.Description, req.Requirements, req.Fields)
	if err := job.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.SaveJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save job: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *HTTPHandler) GetJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) GenerateJob(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if !h.AI.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled: GEMINI_API_KEY is not set"})
		return
	}

	draft, err := h.AI.GenerateJobDetails(c.Request.Context(), req.Prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// --- Form schema editing ---

func (h *HTTPHandler) AddField(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	field := job.AddField()
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusCreated, field)
}

type updateFieldRequest struct {
	Label    *string `json:"label"`
	Type     *string `json:"type"`
	Required *bool   `json:"required"`
}

func (h *HTTPHandler) UpdateField(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	field := job.Field(c.Param("fieldID"))
	if field == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
		return
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}

	if req.Label != nil {
		field.SetLabel(*req.Label)
	}
	if req.Type != nil {
		if err := field.SetType(domain.FieldType(*req.Type)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Required != nil {
		field.SetRequired(*req.Required)
	}

	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusOK, field)
}

func (h *HTTPHandler) RemoveField(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	if !job.RemoveField(c.Param("fieldID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
		return
	}
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) ReorderFields(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}
	if err := job.ReorderField(req.From, req.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) AddOption(c *gin.Context) {
	job, field, ok := h.loadField(c)
	if !ok {
		return
	}
	field.AddOption()
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (h *HTTPHandler) UpdateOption(c *gin.Context) {
	job, field, ok := h.loadField(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option index"})
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}
	if err := field.UpdateOption(index, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusOK, field)
}

func (h *HTTPHandler) RemoveOption(c *gin.Context) {
	job, field, ok := h.loadField(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option index"})
		return
	}
	if err := field.RemoveOption(index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.saveJob(c, job) {
		return
	}
	c.JSON(http.StatusOK, field)
}

// --- Applications ---

type submitApplicationForm struct {
	CandidateName  string `form:"candidate_name" binding:"required"`
	CandidateEmail string `form:"candidate_email" binding:"required,email"`
	Responses      string `form:"responses"`
	ResumeText     string `form:"resume_text"`
}

// SubmitApplication accepts a multipart submission: candidate identity, the
// form answers as a JSON object, and a resume as an uploaded file or pasted
// text. Only PDF uploads keep their raw bytes; any other file type is
// recorded by name only, with no content extraction attempted.
func (h *HTTPHandler) SubmitApplication(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	var form submitApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission: " + err.Error()})
		return
	}

	responses := domain.ResponseMap{}
	if strings.TrimSpace(form.Responses) != "" {
		if err := json.Unmarshal([]byte(form.Responses), &responses); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "responses must be a JSON object: " + err.Error()})
			return
		}
	}

	var resumeText, resumeData, resumeMime string
	if header, err := c.FormFile("resume"); err == nil {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open resume upload"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read resume upload"})
			return
		}

		if header.Header.Get("Content-Type") == domain.MimePDF {
			resumeData = base64.StdEncoding.EncodeToString(data)
			resumeMime = domain.MimePDF
			resumeText = "PDF Resume Attached"
		} else {
			resumeText = "Document Attached: " + header.Filename
		}
	} else {
		resumeText = strings.TrimSpace(form.ResumeText)
	}

	if err := domain.ValidateSubmission(job, responses, resumeData != "" || resumeText != ""); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app := domain.NewApplication(job.ID, form.CandidateName, form.CandidateEmail, responses)
	app.ResumeText = resumeText
	app.ResumeData = resumeData
	app.ResumeMimeType = resumeMime

	if err := h.Store.SaveApplication(c.Request.Context(), app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save application: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListApplications returns a job's applications sorted by descending score;
// unanalyzed applications count as zero, matching the recruiter view.
func (h *HTTPHandler) ListApplications(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	apps, err := h.Store.GetApplications(c.Request.Context(), job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications: " + err.Error()})
		return
	}
	sortByScore(apps)
	c.JSON(http.StatusOK, apps)
}

// AnalyzeApplication scores one application synchronously and persists the
// result. Assessment never fails outright, but a failed store write does.
func (h *HTTPHandler) AnalyzeApplication(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}
	if !h.AI.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled: GEMINI_API_KEY is not set"})
		return
	}

	job, err := h.Store.GetJob(c.Request.Context(), app.JobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found for application"})
		return
	}

	analysis := h.AI.AnalyzeCandidate(c.Request.Context(), job, app)
	app.AiAnalysis = &analysis

	if err := h.Store.UpdateApplication(c.Request.Context(), app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist analysis: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, app)
}

// AnalyzeAll queues every unscored application of the job for the
// sequential worker and returns immediately with the queued count.
func (h *HTTPHandler) AnalyzeAll(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	if !h.AI.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled: GEMINI_API_KEY is not set"})
		return
	}

	queued, err := h.Assessor.EnqueueBatch(c.Request.Context(), h.Queue, job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue batch: " + err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

// ResumeText returns a plain-text rendering of the stored resume: extracted
// from the PDF bytes when present, the stored text marker otherwise.
func (h *HTTPHandler) ResumeText(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}
	if app.ResumeData != "" {
		data, err := base64.StdEncoding.DecodeString(app.ResumeData)
		if err == nil {
			if text, err := infrastructure.ExtractPDFText(data); err == nil {
				c.JSON(http.StatusOK, gin.H{"source": "pdf", "text": text})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"source": "text", "text": app.ResumeText})
}

// ExportReport streams a ranked-candidates spreadsheet for the job.
func (h *HTTPHandler) ExportReport(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	apps, err := h.Store.GetApplications(c.Request.Context(), job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications: " + err.Error()})
		return
	}
	sortByScore(apps)

	c.Header("Content-Disposition", `attachment; filename="candidates.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.WriteReport(c.Writer, job, apps); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report: " + err.Error()})
	}
}

// --- helpers ---

func (h *HTTPHandler) loadJob(c *gin.Context) (*domain.Job, bool) {
	job, err := h.Store.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job: " + err.Error()})
		return nil, false
	}
	return job, true
}

func (h *HTTPHandler) loadField(c *gin.Context) (*domain.Job, *domain.FormField, bool) {
	job, ok := h.loadJob(c)
	if !ok {
		return nil, nil, false
	}
	field := job.Field(c.Param("fieldID"))
	if field == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
		return nil, nil, false
	}
	return job, field, true
}

func (h *HTTPHandler) loadApplication(c *gin.Context) (*domain.Application, bool) {
	app, err := h.Store.GetApplication(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load application: " + err.Error()})
		return nil, false
	}
	return app, true
}

func (h *HTTPHandler) saveJob(c *gin.Context, job *domain.Job) bool {
	if err := h.Store.SaveJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save job: " + err.Error()})
		return false
	}
	return true
}

func sortByScore(apps []domain.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return scoreOf(apps[i]) > scoreOf(apps[j])
	})
}

func scoreOf(a domain.Application) int {
	if a.AiAnalysis == nil {
		return 0
	}
	return a.AiAnalysis.Score
}
