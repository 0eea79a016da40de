package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

func testResult(id string, provider domain.AIProvider, at domain.AnalysisType, created time.Time) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:           id,
		Provider:     provider,
		Model:        "model",
		AnalysisType: at,
		Content:      "# Result " + id,
		Sources: []domain.SourceReference{
			{Label: "S1", ID: "source-1", Type: domain.SourceTypeManualInput, Title: "Notes"},
		},
		CreatedAt: created,
	}
}

func TestNewResultStore(t *testing.T) {
	store := NewResultStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.results)
}

func TestResultStore_SaveAndGet(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testResult("r-1", domain.AIProviderAnthropic, domain.AnalysisSynthesis, created)))

	got, err := store.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "# Result r-1", got.Content)
	assert.Equal(t, domain.AIProviderAnthropic, got.Provider)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "Notes", got.Sources[0].Title)
}

func TestResultStore_Save_CopiesSources(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	result := testResult("r-1", domain.AIProviderOllama, domain.AnalysisSummary, time.Now())

	require.NoError(t, store.Save(ctx, result))
	result.Sources[0].Title = "changed"

	got, err := store.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Sources[0].Title)
}

func TestResultStore_Save_RejectsMissingID(t *testing.T) {
	store := NewResultStore()

	assert.ErrorIs(t, store.Save(context.Background(), &domain.AnalysisResult{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestResultStore_Get_NotFound(t *testing.T) {
	store := NewResultStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResultStore_List(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testResult("old", domain.AIProviderOllama, domain.AnalysisSummary, base)))
	require.NoError(t, store.Save(ctx, testResult("mid", domain.AIProviderAnthropic, domain.AnalysisComparison, base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, testResult("new", domain.AIProviderAnthropic, domain.AnalysisSynthesis, base.Add(2*time.Hour))))

	t.Run("newest first", func(t *testing.T) {
		results, err := store.List(ctx, domain.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "new", results[0].ID)
		assert.Equal(t, "mid", results[1].ID)
		assert.Equal(t, "old", results[2].ID)
	})

	t.Run("by provider", func(t *testing.T) {
		results, err := store.List(ctx, domain.HistoryFilter{Provider: domain.AIProviderAnthropic})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("by type and since", func(t *testing.T) {
		results, err := store.List(ctx, domain.HistoryFilter{
			AnalysisType: domain.AnalysisComparison,
			Since:        base.Add(30 * time.Minute),
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mid", results[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := store.List(ctx, domain.HistoryFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "new", results[0].ID)
	})
}

func TestResultStore_Delete(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testResult("r-1", domain.AIProviderOllama, domain.AnalysisSummary, time.Now())))

	require.NoError(t, store.Delete(ctx, "r-1"))
	_, err := store.Get(ctx, "r-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "r-1"), domain.ErrNotFound)
}

func TestResultStore_ConcurrentAccess(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			_ = store.Save(ctx, testResult(id, domain.AIProviderOllama, domain.AnalysisSynthesis, time.Now()))
			_, _ = store.List(ctx, domain.HistoryFilter{})
		}(i)
	}
	wg.Wait()

	results, err := store.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 20)
}
