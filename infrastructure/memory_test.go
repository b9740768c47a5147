package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscout/domain"
)

func TestMemoryStoreJobRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	job := domain.NewJob("Backend Engineer", "Engineering", "Build services", "Go, SQL", []domain.FormField{
		{ID: "f1", Label: "Years of experience", Type: domain.FieldNumber, Required: true},
		{ID: "f2", Label: "Work setup", Type: domain.FieldMultiselect, Options: []string{"Remote", "Hybrid"}},
	})
	require.NoError(t, store.SaveJob(ctx, job))

	loaded, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Title, loaded.Title)
	require.Len(t, loaded.Fields, 2)
	assert.Equal(t, "f1", loaded.Fields[0].ID)
	assert.Equal(t, "f2", loaded.Fields[1].ID)
	assert.Equal(t, []string{"Remote", "Hybrid"}, loaded.Fields[1].Options)
}

func TestMemoryStoreGetJobNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetJob(context.Background(), "job-missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryStoreApplications(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := domain.NewApplication("job-1", "Jane Doe", "jane@x.com", domain.ResponseMap{"f1": "5"})
	first.SubmittedAt = time.Now().Add(-time.Hour)
	second := domain.NewApplication("job-1", "John Doe", "john@x.com", nil)
	other := domain.NewApplication("job-2", "Someone Else", "else@x.com", nil)

	require.NoError(t, store.SaveApplication(ctx, first))
	require.NoError(t, store.SaveApplication(ctx, second))
	require.NoError(t, store.SaveApplication(ctx, other))

	apps, err := store.GetApplications(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, first.ID, apps[0].ID, "applications should come back in submission order")
	assert.Equal(t, second.ID, apps[1].ID)
}

func TestMemoryStoreUpdateApplicationReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	app := domain.NewApplication("job-1", "Jane Doe", "jane@x.com", nil)
	require.NoError(t, store.SaveApplication(ctx, app))

	analysis := domain.CandidateAnalysis{Score: 87, Reasoning: "Strong match.", Strengths: []string{"Go"}, Weaknesses: []string{}}
	app.AiAnalysis = &analysis
	require.NoError(t, store.UpdateApplication(ctx, app))

	loaded, err := store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.AiAnalysis)
	assert.Equal(t, 87, loaded.AiAnalysis.Score)
}
