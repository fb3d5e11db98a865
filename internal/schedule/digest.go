package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/suportenet-io/suportenet/internal/ticket"
)

// NotifyFunc pushes a digest text to the operations channel.
type NotifyFunc func(ctx context.Context, text string) error

// Digest periodically summarizes the service visits scheduled for the next
// 24 hours.
type Digest struct {
	cron   *cron.Cron
	store  ticket.Store
	notify NotifyFunc // may be nil; the summary is always logged
	logger *slog.Logger

	// Now is the clock the digest window is anchored on. Overridable in tests.
	Now func() time.Time
}

// NewDigest creates a digest bound to store. notify may be nil.
func NewDigest(store ticket.Store, notify NotifyFunc, logger *slog.Logger) *Digest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Digest{
		cron:   cron.New(),
		store:  store,
		notify: notify,
		logger: logger,
		Now:    time.Now,
	}
}

// Register schedules the digest on a standard cron expression (5 fields) or
// a predefined schedule like @every 12h.
func (d *Digest) Register(schedule string) error {
	_, err := d.cron.AddFunc(schedule, func() {
		if err := d.Run(context.Background()); err != nil {
			d.logger.Error("digest run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("digest: invalid schedule %q: %w", schedule, err)
	}
	d.logger.Info("digest registered", "schedule", schedule)
	return nil
}

// Start begins the cron scheduler. Blocks until context is cancelled.
func (d *Digest) Start(ctx context.Context) error {
	d.cron.Start()
	d.logger.Info("digest scheduler started")

	<-ctx.Done()
	d.cron.Stop()
	d.logger.Info("digest scheduler stopped")
	return ctx.Err()
}

// Run builds and delivers one digest covering the next 24 hours.
func (d *Digest) Run(ctx context.Context) error {
	now := d.Now().UTC()
	filter := ticket.Filter{WindowFrom: now, WindowTo: now.Add(24 * time.Hour)}

	count, err := d.store.Count(filter)
	if err != nil {
		return fmt.Errorf("digest: count: %w", err)
	}

	text := fmt.Sprintf("Agenda SuporteNet: %d visita(s) nas próximas 24h.", count)
	if count > 0 {
		tickets, err := d.store.List(filter)
		if err != nil {
			return fmt.Errorf("digest: list: %w", err)
		}
		for _, t := range tickets {
			text += fmt.Sprintf("\n- %s: %s, %s (%s)", t.Protocolo, t.Endereco, t.Cidade, t.WhenISO)
		}
	}

	d.logger.Info("digest", "upcoming", count)
	if d.notify != nil {
		if err := d.notify(ctx, text); err != nil {
			return fmt.Errorf("digest: notify: %w", err)
		}
	}
	return nil
}
