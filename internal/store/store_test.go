package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTx(account, desc, amount string, day int) models.StoredTransaction {
	return models.StoredTransaction{
		ParsedTransaction: models.ParsedTransaction{
			Date:        time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
			Description: desc,
			Amount:      decimal.RequireFromString(amount),
		},
		AccountID: account,
	}
}

func TestOpen_MigratesOnce(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Migrate(context.Background()))

	var v int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&v))
	assert.Equal(t, SchemaVersion, v)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ingest.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestTransactions_InsertIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	txs := openTest(t).Transactions()

	n, err := txs.InsertBatch(ctx, []models.StoredTransaction{
		newTx("a1", "Coffee", "-12.5", 1),
		newTx("a1", "Coffee", "-12.50", 1),
		newTx("a2", "Coffee", "-12.5", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	existing, err := txs.FindExisting(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, existing, 1)
	assert.True(t, existing[0].Amount.Equal(decimal.RequireFromString("-12.5")))
}

func TestTransactions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	txs := openTest(t).Transactions()

	vd := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	oa := decimal.RequireFromString("-25.00")
	in := newTx("a1", "AMAZON", "-92.10", 3)
	in.ValueDate = &vd
	in.OriginalAmount = &oa
	in.OriginalCurrency = "USD"
	in.Reference = "778812"
	in.CategoryID = "c1"
	in.IsAutoCategorized = true

	_, err := txs.InsertBatch(ctx, []models.StoredTransaction{in})
	require.NoError(t, err)

	list, err := txs.ListTransactions(ctx, models.TransactionFilter{AccountID: "a1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, vd, *got.ValueDate)
	assert.True(t, got.OriginalAmount.Equal(oa))
	assert.Equal(t, "USD", got.OriginalCurrency)
	assert.Equal(t, "778812", got.Reference)
	assert.Equal(t, "c1", got.CategoryID)
	assert.True(t, got.IsAutoCategorized)

	byID, err := txs.GetTransaction(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Description, byID.Description)

	_, err = txs.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactions_Update(t *testing.T) {
	ctx := context.Background()
	txs := openTest(t).Transactions()

	rows := []models.StoredTransaction{newTx("a1", "Refund", "100", 1), newTx("a1", "Other", "-5", 2)}
	rows[0].CategoryID = "c1"
	rows[0].IsRecurring = true
	_, err := txs.InsertBatch(ctx, rows)
	require.NoError(t, err)

	amount := decimal.NewFromInt(-100)
	empty := ""
	no := false
	err = txs.UpdateOne(ctx, rows[0].ID, models.TransactionUpdate{
		Amount: &amount, CategoryID: &empty, IsRecurring: &no, ClearValueDate: true, IncrementCorrections: true,
	})
	require.NoError(t, err)

	got, err := txs.GetTransaction(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(amount))
	assert.Empty(t, got.CategoryID)
	assert.False(t, got.IsRecurring)
	assert.Equal(t, 1, got.CorrectionCount)

	yes := true
	n, err := txs.UpdateMany(ctx, []string{rows[0].ID, rows[1].ID, "missing"}, models.TransactionUpdate{IsRecurring: &yes})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, txs.UpdateOne(ctx, "missing", models.TransactionUpdate{IsRecurring: &yes}), ErrNotFound)
}

func TestAccounts_FindOrCreate(t *testing.T) {
	ctx := context.Background()
	accounts := openTest(t).Accounts()

	blank, err := accounts.FindOrCreate(ctx, models.InstitutionIsracard, "")
	require.NoError(t, err)

	again, err := accounts.FindOrCreate(ctx, models.InstitutionIsracard, "")
	require.NoError(t, err)
	assert.Equal(t, blank.ID, again.ID)

	upgraded, err := accounts.FindOrCreate(ctx, models.InstitutionIsracard, "1234")
	require.NoError(t, err)
	assert.Equal(t, blank.ID, upgraded.ID, "blank account claims the card number")
	assert.Equal(t, "1234", upgraded.CardNumber)

	sameCard, err := accounts.FindOrCreate(ctx, models.InstitutionIsracard, "")
	require.NoError(t, err)
	assert.Equal(t, blank.ID, sameCard.ID, "only account of the institution")

	other, err := accounts.FindOrCreate(ctx, models.InstitutionIsracard, "9876")
	require.NoError(t, err)
	assert.NotEqual(t, blank.ID, other.ID)

	bank, err := accounts.FindOrCreate(ctx, models.InstitutionHapoalim, "")
	require.NoError(t, err)
	assert.NotEqual(t, blank.ID, bank.ID)

	all, err := accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cats := s.Categories()

	n, err := s.Seed(ctx, []models.Category{
		{Name: "Groceries", AliasName: "groceries", Keywords: []models.CategoryKeyword{{Keyword: "Shufersal"}, {Keyword: "VIP", IsExact: true, Priority: 5}}},
		{Name: "Fuel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Seed(ctx, []models.Category{{Name: "Ignored"}})
	require.NoError(t, err)
	assert.Zero(t, n, "seeding only happens on an empty table")

	list, err := cats.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Groceries", list[0].Name)
	require.Len(t, list[0].Keywords, 2)
	assert.Equal(t, "vip", list[0].Keywords[0].Keyword, "higher priority first")
	assert.True(t, list[0].Keywords[0].IsExact)

	require.NoError(t, cats.AddKeyword(ctx, list[1].ID, "Sonol"))
	require.NoError(t, cats.AddKeyword(ctx, list[1].ID, "sonol"))
	list, err = cats.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list[1].Keywords, 1)

	created, err := cats.EnsureCategory(ctx, "Pets", "pets")
	require.NoError(t, err)
	found, err := cats.EnsureCategory(ctx, "Pets", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	list, err = cats.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pets", list[2].Name)
}

func TestRecurringKeywordsAndSnoozes(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	rk := s.RecurringKeywords()
	require.NoError(t, rk.Upsert(ctx, "Netflix"))
	require.NoError(t, rk.Upsert(ctx, "netflix"))
	list, err := rk.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "netflix", list[0].Keyword)
	require.NoError(t, rk.Delete(ctx, "NETFLIX"))
	list, err = rk.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	sn := s.Snoozes()
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(48 * time.Hour)
	require.NoError(t, sn.Set(ctx, "add|expense|netflix", &until))

	got, err := sn.Get(ctx, "add|expense|netflix")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(until))

	active, err := sn.ActiveSnoozes(ctx, now)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	active, err = sn.ActiveSnoozes(ctx, until)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, sn.Set(ctx, "add|expense|netflix", nil))
	got, err = sn.Get(ctx, "add|expense|netflix")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "categories:\n  - name: Groceries\n    alias: groceries\n    keywords:\n      - shufersal\n      - keyword: vip\n        is_exact: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cats, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "groceries", cats[0].AliasName)
	require.Len(t, cats[0].Keywords, 2)
	assert.Equal(t, "shufersal", cats[0].Keywords[0].Keyword)
	assert.True(t, cats[0].Keywords[1].IsExact)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
