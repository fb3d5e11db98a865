package schedule

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/suportenet-io/suportenet/internal/ticket"
	"github.com/suportenet-io/suportenet/pkg/protocol"
)

func newDigestTicket(protocolo, endereco string, when time.Time) *protocol.Ticket {
	iso := when.UTC().Format(time.RFC3339)
	return &protocol.Ticket{
		Protocolo:          protocolo,
		Endereco:           endereco,
		Cidade:             "Campinas",
		NumeroCliente:      "11987654321",
		PreferenciaContato: "11987654321",
		WhenISO:            iso,
		Etapa:              protocol.EtapaAgendado,
		Previsao:           iso,
		CreatedAt:          when.Add(-24 * time.Hour),
	}
}

func TestDigestRun(t *testing.T) {
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	store := ticket.NewMemoryStore()
	store.Save(newDigestTicket("SN-AAAA-000001", "Rua A, 10", now.Add(3*time.Hour)))
	store.Save(newDigestTicket("SN-BBBB-000002", "Rua B, 20", now.Add(20*time.Hour)))
	store.Save(newDigestTicket("SN-CCCC-000003", "Rua C, 30", now.Add(48*time.Hour))) // outside window
	store.Save(newDigestTicket("SN-DDDD-000004", "Rua D, 40", now.Add(-time.Hour)))   // already past

	var sent string
	d := NewDigest(store, func(_ context.Context, text string) error {
		sent = text
		return nil
	}, nil)
	d.Now = func() time.Time { return now }

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(sent, "2 visita(s)") {
		t.Errorf("digest = %q, want 2 upcoming visits", sent)
	}
	if !strings.Contains(sent, "SN-AAAA-000001") || !strings.Contains(sent, "SN-BBBB-000002") {
		t.Errorf("digest missing upcoming tickets: %q", sent)
	}
	if strings.Contains(sent, "SN-CCCC-000003") || strings.Contains(sent, "SN-DDDD-000004") {
		t.Errorf("digest includes out-of-window tickets: %q", sent)
	}
}

func TestDigestRunEmpty(t *testing.T) {
	var sent string
	d := NewDigest(ticket.NewMemoryStore(), func(_ context.Context, text string) error {
		sent = text
		return nil
	}, nil)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(sent, "0 visita(s)") {
		t.Errorf("digest = %q", sent)
	}
}

func TestDigestRunNilNotify(t *testing.T) {
	d := NewDigest(ticket.NewMemoryStore(), nil, nil)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run with nil notify: %v", err)
	}
}

func TestDigestRegisterInvalidSchedule(t *testing.T) {
	d := NewDigest(ticket.NewMemoryStore(), nil, nil)
	if err := d.Register("not-a-schedule"); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestDigestRegisterEverySchedule(t *testing.T) {
	d := NewDigest(ticket.NewMemoryStore(), nil, nil)
	if err := d.Register("@every 12h"); err != nil {
		t.Errorf("Register: %v", err)
	}
}
