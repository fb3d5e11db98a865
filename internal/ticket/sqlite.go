package ticket

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// SQLiteStore implements Store on SQLite, for deployments that want tickets
// to survive restarts. The default deployment uses MemoryStore instead.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ticket store: open: %w", err)
	}

	// Enable WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ticket store: wal: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tickets (
			protocolo           TEXT PRIMARY KEY,
			problema            TEXT NOT NULL DEFAULT '',
			dispositivo         TEXT NOT NULL DEFAULT '',
			endereco            TEXT NOT NULL DEFAULT '',
			cidade              TEXT NOT NULL DEFAULT '',
			plano               TEXT NOT NULL DEFAULT '',
			numero_cliente      TEXT NOT NULL,
			preferencia_contato TEXT NOT NULL,
			nome                TEXT NOT NULL DEFAULT '',
			when_iso            TEXT NOT NULL,
			etapa               TEXT NOT NULL,
			previsao            TEXT NOT NULL,
			created_at          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tickets_contato ON tickets(preferencia_contato);
		CREATE INDEX IF NOT EXISTS idx_tickets_when ON tickets(when_iso);
	`)
	if err != nil {
		return fmt.Errorf("ticket store: migrate: %w", err)
	}
	return nil
}

// Save upserts, so a protocol ID collision silently replaces the older
// ticket. That matches the documented ID-generation limitation.
func (s *SQLiteStore) Save(t *protocol.Ticket) error {
	_, err := s.db.Exec(`
		INSERT INTO tickets (protocolo, problema, dispositivo, endereco, cidade, plano,
			numero_cliente, preferencia_contato, nome, when_iso, etapa, previsao, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(protocolo) DO UPDATE SET
			problema=excluded.problema, dispositivo=excluded.dispositivo,
			endereco=excluded.endereco, cidade=excluded.cidade, plano=excluded.plano,
			numero_cliente=excluded.numero_cliente,
			preferencia_contato=excluded.preferencia_contato, nome=excluded.nome,
			when_iso=excluded.when_iso, etapa=excluded.etapa,
			previsao=excluded.previsao, created_at=excluded.created_at
	`, t.Protocolo, t.Problema, t.Dispositivo, t.Endereco, t.Cidade, t.Plano,
		t.NumeroCliente, t.PreferenciaContato, t.Nome, t.WhenISO, t.Etapa,
		t.Previsao, t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ticket store: save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(protocolo string) (*protocol.Ticket, error) {
	row := s.db.QueryRow(selectColumns+` FROM tickets WHERE protocolo = ?`, protocolo)
	t, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ticket %q not found", protocolo)
		}
		return nil, fmt.Errorf("ticket store: get: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) FindByContact(contact string) (*protocol.Ticket, error) {
	row := s.db.QueryRow(selectColumns+`
		FROM tickets WHERE preferencia_contato = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, contact)
	t, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no ticket for contact %q", contact)
		}
		return nil, fmt.Errorf("ticket store: find by contact: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) List(filter Filter) ([]*protocol.Ticket, error) {
	query, args := filterQuery(selectColumns+" FROM tickets WHERE 1=1", filter)
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ticket store: list: %w", err)
	}
	defer rows.Close()

	var tickets []*protocol.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("ticket store: list scan: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *SQLiteStore) Count(filter Filter) (int, error) {
	query, args := filterQuery("SELECT COUNT(*) FROM tickets WHERE 1=1", filter)
	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ticket store: count: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- helpers ---

const selectColumns = `SELECT protocolo, problema, dispositivo, endereco, cidade, plano,
	numero_cliente, preferencia_contato, nome, when_iso, etapa, previsao, created_at`

// filterQuery appends WHERE clauses for filter. Window bounds compare the
// RFC 3339 when_iso column lexicographically, which is valid because every
// stored window uses the same UTC format.
func filterQuery(query string, filter Filter) (string, []any) {
	var args []any
	if filter.Contact != "" {
		query += " AND preferencia_contato = ?"
		args = append(args, filter.Contact)
	}
	if !filter.WindowFrom.IsZero() {
		query += " AND when_iso >= ?"
		args = append(args, filter.WindowFrom.UTC().Format(time.RFC3339))
	}
	if !filter.WindowTo.IsZero() {
		query += " AND when_iso < ?"
		args = append(args, filter.WindowTo.UTC().Format(time.RFC3339))
	}
	return query, args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTicket(s scannable) (*protocol.Ticket, error) {
	var t protocol.Ticket
	var createdAt string
	err := s.Scan(&t.Protocolo, &t.Problema, &t.Dispositivo, &t.Endereco, &t.Cidade,
		&t.Plano, &t.NumeroCliente, &t.PreferenciaContato, &t.Nome, &t.WhenISO,
		&t.Etapa, &t.Previsao, &createdAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &t, nil
}
