package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/ingest"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/store"
)

type noCredentials struct{}

func (noCredentials) CategorizationAPIKey() string { return "" }

type fixedClassifier map[string]string

func (f fixedClassifier) Name() string { return "fixed" }

func (f fixedClassifier) Classify(_ context.Context, descriptions, _ []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, d := range descriptions {
		if label, ok := f[d]; ok {
			out[d] = label
		}
	}
	return out, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.Path = store.MemoryPath

	seed := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`categories:
  - name: Groceries
    alias: groceries
    keywords: [supermart]
  - name: Streaming
    alias: subscriptions
`), 0600))
	cfg.Categorization.SeedFile = seed
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestNewContainer_WithoutAI(t *testing.T) {
	log := logging.NewMockLogger()
	c, err := NewContainerWithOptions(context.Background(), testConfig(t), Options{Logger: log, Credentials: noCredentials{}})
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	assert.NotNil(t, c.GetIngest())
	assert.NotNil(t, c.GetRecurring())
	assert.False(t, c.GetOrchestrator().AIEnabled())
	assert.Same(t, log, c.GetLogger())
	assert.Equal(t, store.MemoryPath, c.GetConfig().Database.Path)
	assert.True(t, log.HasEntry("INFO", "AI categorization disabled"))

	n, err := c.GetStore().Categories().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewContainer_InjectedClassifier(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainerWithOptions(ctx, testConfig(t), Options{
		Logger:     logging.NewMockLogger(),
		Classifier: fixedClassifier{"NETFLIX.COM": "Streaming"},
	})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	require.True(t, c.GetOrchestrator().AIEnabled())

	csv := "date,description,amount\n01/05/2024,NETFLIX.COM,-49.90\n02/05/2024,SUPERMART 0042,-80\n"
	res, err := c.GetIngest().Import(ctx, ingest.RawFile{Name: "bank.csv", Data: []byte(csv)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Categorized)

	cats, err := c.GetStore().Categories().ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	require.Len(t, cats[1].Keywords, 1, "AI assignment is learned")
	assert.Equal(t, "netflix com", cats[1].Keywords[0].Keyword)
}

func TestNewContainer_BadHeuristicsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.HeuristicsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewContainerWithOptions(context.Background(), cfg, Options{Logger: logging.NewMockLogger(), Credentials: noCredentials{}})
	assert.Error(t, err)
}

func TestRecurringParams(t *testing.T) {
	cfg := config.Defaults()
	cfg.Recurring.TopN = 2
	cfg.Recurring.RecentWindowDays = 10
	cfg.Recurring.AmountTolerance = 1.5

	p := recurringParams(cfg)
	assert.Equal(t, 2, p.TopN)
	assert.Equal(t, "240h0m0s", p.RecentWindow.String())
	assert.Equal(t, "1.5", p.AmountTolerance.String())
}
