package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suportenet-io/suportenet/internal/logbuf"
	"github.com/suportenet-io/suportenet/internal/ticket"
	"github.com/suportenet-io/suportenet/pkg/protocol"
)

func seedStore(t *testing.T) *ticket.MemoryStore {
	t.Helper()
	store := ticket.NewMemoryStore()
	base := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	for i, tk := range []struct {
		protocolo, contato string
	}{
		{"SN-AAAA-000001", "11987654321"},
		{"SN-BBBB-000002", "ana@example.com"},
		{"SN-CCCC-000003", "11987654321"},
	} {
		iso := base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		err := store.Save(&protocol.Ticket{
			Protocolo:          tk.protocolo,
			NumeroCliente:      "11987654321",
			PreferenciaContato: tk.contato,
			WhenISO:            iso,
			Etapa:              protocol.EtapaAgendado,
			Previsao:           iso,
			CreatedAt:          base,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func TestAPIHealth(t *testing.T) {
	s := NewServer(ticket.NewMemoryStore(), Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAPIListTickets(t *testing.T) {
	s := NewServer(seedStore(t), Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var tickets []*protocol.Ticket
	if err := json.NewDecoder(w.Body).Decode(&tickets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("len = %d, want 3", len(tickets))
	}
	// Newest first
	if tickets[0].Protocolo != "SN-CCCC-000003" {
		t.Errorf("first = %q", tickets[0].Protocolo)
	}
}

func TestAPIListTicketsFiltered(t *testing.T) {
	s := NewServer(seedStore(t), Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets?contato=11987654321&limit=1", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var tickets []*protocol.Ticket
	json.NewDecoder(w.Body).Decode(&tickets)
	if len(tickets) != 1 {
		t.Fatalf("len = %d, want 1", len(tickets))
	}
	if tickets[0].PreferenciaContato != "11987654321" {
		t.Errorf("contato = %q", tickets[0].PreferenciaContato)
	}
}

func TestAPIListTicketsEmpty(t *testing.T) {
	s := NewServer(ticket.NewMemoryStore(), Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	// Empty store serializes as [], not null.
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q", got)
	}
}

func TestAPIGetTicket(t *testing.T) {
	s := NewServer(seedStore(t), Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/SN-AAAA-000001", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var tk protocol.Ticket
	json.NewDecoder(w.Body).Decode(&tk)
	if tk.Protocolo != "SN-AAAA-000001" {
		t.Errorf("protocolo = %q", tk.Protocolo)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tickets/SN-XXXX-999999", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown ticket, got %d", w.Code)
	}
}

func TestAPIAuth(t *testing.T) {
	s := NewServer(seedStore(t), Config{Key: "opskey"}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	req.Header.Set("Authorization", "Bearer opskey")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", w.Code)
	}

	// Health stays open
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", w.Code)
	}
}

func TestAPIGetLogs(t *testing.T) {
	buf := logbuf.New(10)
	buf.Write(logbuf.Entry{Time: time.Now(), Level: "INFO", Message: "ticket created"})
	buf.Write(logbuf.Entry{Time: time.Now(), Level: "ERROR", Message: "save failed"})

	s := NewServer(ticket.NewMemoryStore(), Config{}, nil, buf)

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var entries []logbuf.Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/logs?level=error", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	entries = nil
	json.NewDecoder(w.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Message != "save failed" {
		t.Errorf("error-level entries = %+v", entries)
	}
}

func TestAPIGetLogsNoBuffer(t *testing.T) {
	s := NewServer(ticket.NewMemoryStore(), Config{}, slog.Default(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q", got)
	}
}

func TestAPICORSPreflight(t *testing.T) {
	s := NewServer(ticket.NewMemoryStore(), Config{Key: "opskey"}, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/tickets", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
