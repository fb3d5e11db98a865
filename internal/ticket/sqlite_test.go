package ticket

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tickets.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, newTestSQLiteStore(t))
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	want := testTicket("SN-PERS-000001", "11987654321", time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC))
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("SN-PERS-000001")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.WhenISO != want.WhenISO {
		t.Errorf("WhenISO = %q, want %q", got.WhenISO, want.WhenISO)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}
