package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

type memTxns struct {
	txns    []models.StoredTransaction
	updated []string
	flag    *bool
}

func (m *memTxns) ListTransactions(_ context.Context, f models.TransactionFilter) ([]models.StoredTransaction, error) {
	var out []models.StoredTransaction
	for _, t := range m.txns {
		if f.AccountID == "" || t.AccountID == f.AccountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTxns) UpdateMany(_ context.Context, ids []string, u models.TransactionUpdate) (int, error) {
	m.updated = ids
	m.flag = u.IsRecurring
	return len(ids), nil
}

type memKeywords struct{ upserted, deleted []string }

func (m *memKeywords) Upsert(_ context.Context, k string) error {
	m.upserted = append(m.upserted, k)
	return nil
}

func (m *memKeywords) Delete(_ context.Context, k string) error {
	m.deleted = append(m.deleted, k)
	return nil
}

type memSnoozes map[string]time.Time

func (m memSnoozes) ActiveSnoozes(_ context.Context, now time.Time) (map[string]time.Time, error) {
	out := map[string]time.Time{}
	for k, v := range m {
		if v.After(now) {
			out[k] = v
		}
	}
	return out, nil
}

func (m memSnoozes) Set(_ context.Context, key string, until *time.Time) error {
	if until == nil {
		delete(m, key)
		return nil
	}
	m[key] = *until
	return nil
}

func newTestService(txns []models.StoredTransaction) (*Service, *memTxns, *memKeywords, memSnoozes) {
	tx := &memTxns{txns: txns}
	kw := &memKeywords{}
	sn := memSnoozes{}
	return NewService(NewEngine(Params{}), tx, kw, sn, 0, logging.NewMockLogger()), tx, kw, sn
}

func TestService_AcceptAdd(t *testing.T) {
	now := date(2024, time.April, 20)
	svc, tx, kw, _ := newTestService(monthly("n", "NETFLIX", "-49.90", false, time.February, time.March, time.April))

	sug, n, err := svc.Accept(context.Background(), "acc", "add|expense|netflix", now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, sug.TransactionIDs, tx.updated)
	require.NotNil(t, tx.flag)
	assert.True(t, *tx.flag)
	assert.Equal(t, []string{"netflix"}, kw.upserted)
}

func TestService_AcceptRemove(t *testing.T) {
	svc, tx, kw, _ := newTestService(monthly("r", "SPOTIFY", "-19.90", true, time.January, time.February, time.March))

	_, _, err := svc.Accept(context.Background(), "acc", "remove|expense|spotify", date(2024, time.July, 1))
	require.NoError(t, err)
	assert.False(t, *tx.flag)
	assert.Equal(t, []string{"spotify"}, kw.deleted)
}

func TestService_AcceptUnknown(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	_, _, err := svc.Accept(context.Background(), "acc", "add|expense|nothing", date(2024, time.July, 1))
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestService_DismissHidesUntilExpiry(t *testing.T) {
	now := date(2024, time.April, 20)
	svc, _, _, sn := newTestService(monthly("n", "NETFLIX", "-49.90", false, time.February, time.March, time.April))
	ctx := context.Background()

	list, err := svc.List(ctx, "acc", now)
	require.NoError(t, err)
	require.Len(t, list, 1)

	until, err := svc.Dismiss(ctx, list[0].Key, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultSnooze), until)
	assert.Contains(t, sn, list[0].Key)

	list, err = svc.List(ctx, "acc", now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.List(ctx, "acc", until.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, list, 1, "snooze expired")
}
