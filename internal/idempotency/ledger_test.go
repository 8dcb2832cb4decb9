package idempotency

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database per test keeps tests isolated while the
	// shared cache lets every pooled connection see the same tables.
	dsn := fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE idempotency_keys (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  endpoint TEXT NOT NULL,
  idempotency_key TEXT NOT NULL,
  request_hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  response_json BLOB,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_idempotency_scope UNIQUE (tenant_id, endpoint, idempotency_key)
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newTestLedger(t *testing.T) (*Ledger, Repository, *gorm.DB) {
	t.Helper()
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)
	ledger, err := NewLedger(repo)
	require.NoError(t, err)
	return ledger, repo, conn
}

type orderPayload struct {
	Type  string `json:"type"`
	Items []struct {
		MenuItemID string `json:"menuItemId"`
		Qty        int    `json:"qty"`
	} `json:"items"`
}

func TestHashRequestIsDeterministic(t *testing.T) {
	payload := orderPayload{Type: "TAKEAWAY"}

	first, err := HashRequest(payload)
	require.NoError(t, err)
	second, err := HashRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := HashRequest(orderPayload{Type: "DINE_IN"})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestAdmitFirstAttempt(t *testing.T) {
	ledger, repo, _ := newTestLedger(t)
	tenantID := uuid.New()

	admission, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	assert.True(t, admission.Admitted)
	assert.Nil(t, admission.Replay)

	record, err := repo.FindByScope(context.Background(), tenantID, "/orders", "key-1")
	require.NoError(t, err)
	assert.Equal(t, enums.IdempotencyStatusPending, record.Status)
	assert.Equal(t, "hash-1", record.RequestHash)
}

func TestAdmitReplaysCompletedRecord(t *testing.T) {
	ledger, _, conn := newTestLedger(t)
	tenantID := uuid.New()

	admission, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	require.True(t, admission.Admitted)

	response := map[string]any{"orderId": uuid.NewString(), "total_cents": 1300}
	require.NoError(t, ledger.Complete(context.Background(), conn, tenantID, "/orders", "key-1", response))

	replayed, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	assert.False(t, replayed.Admitted)
	assert.JSONEq(t, `{"orderId":"`+response["orderId"].(string)+`","total_cents":1300}`, string(replayed.Replay))
}

func TestAdmitRejectsPayloadMismatch(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	tenantID := uuid.New()

	_, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)

	_, err = ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-2")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIdempotency))
}

func TestAdmitReportsInProgressForPending(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	tenantID := uuid.New()

	_, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)

	_, err = ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInProgress))
}

func TestAdmitTreatsFailedAsInProgress(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	tenantID := uuid.New()

	_, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	require.NoError(t, ledger.MarkFailed(context.Background(), tenantID, "/orders", "key-1"))

	_, err = ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInProgress))
}

func TestAdmitConcurrentDuplicatesAdmitExactlyOnce(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	tenantID := uuid.New()

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		admitted   int
		inProgress int
	)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			admission, err := ledger.Admit(context.Background(), tenantID, "/orders", "key-1", "hash-1")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && admission.Admitted:
				admitted++
			case pkgerrors.HasCode(err, pkgerrors.CodeInProgress):
				inProgress++
			default:
				t.Errorf("unexpected admission outcome: admission=%+v err=%v", admission, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, attempts-1, inProgress)
}

func TestAdmitScopesByTenantAndEndpoint(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	tenantA := uuid.New()
	tenantB := uuid.New()

	first, err := ledger.Admit(context.Background(), tenantA, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	assert.True(t, first.Admitted)

	otherTenant, err := ledger.Admit(context.Background(), tenantB, "/orders", "key-1", "hash-1")
	require.NoError(t, err)
	assert.True(t, otherTenant.Admitted)

	otherEndpoint, err := ledger.Admit(context.Background(), tenantA, "/payments", "key-1", "hash-1")
	require.NoError(t, err)
	assert.True(t, otherEndpoint.Admitted)
}

func TestCompleteRequiresPendingRecord(t *testing.T) {
	ledger, _, conn := newTestLedger(t)
	tenantID := uuid.New()

	err := ledger.Complete(context.Background(), conn, tenantID, "/orders", "missing", map[string]int{"a": 1})
	require.Error(t, err)
}

func TestRetentionDeletes(t *testing.T) {
	ledger, repo, conn := newTestLedger(t)
	tenantID := uuid.New()

	_, err := ledger.Admit(context.Background(), tenantID, "/orders", "done", "hash-1")
	require.NoError(t, err)
	require.NoError(t, ledger.Complete(context.Background(), conn, tenantID, "/orders", "done", map[string]int{"ok": 1}))

	_, err = ledger.Admit(context.Background(), tenantID, "/orders", "stuck", "hash-2")
	require.NoError(t, err)

	// Age both records past the cutoffs.
	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, conn.Exec(`UPDATE idempotency_keys SET created_at = ?`, old).Error)

	finished, err := repo.DeleteFinishedBefore(context.Background(), time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), finished)

	pending, err := repo.DeleteStalePendingBefore(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	var count int64
	require.NoError(t, conn.Table("idempotency_keys").Count(&count).Error)
	assert.Zero(t, count)
}
