// Package fulfill routes classified intents to their scripted replies.
package fulfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suportenet-io/suportenet/internal/contact"
	"github.com/suportenet-io/suportenet/internal/schedule"
	"github.com/suportenet-io/suportenet/internal/ticket"
	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// Intent is a classified conversational action name supplied by the NLU
// platform. Unknown names fall through to the fallback reply.
type Intent string

const (
	IntentOpenTicket   Intent = "intent.abrir_chamado"
	IntentTicketStatus Intent = "intent.status_chamado"
	IntentFAQ          Intent = "intent.faq"
	IntentHandoff      Intent = "intent.handoff_encerramento"
)

// openTicketContext is the output-context suffix that carries a freshly
// opened ticket's protocol between turns.
const (
	openTicketContext         = "/contexts/ctx_chamado_aberto"
	openTicketContextLifespan = 5
)

// Notifier pushes operational notices about ticket activity. Delivery is
// best-effort; a failed notice never fails the request.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Router maps classified intents to reply handlers. Exactly one handler runs
// per event and every handler is total over its input: whatever arrives, the
// customer gets a reply.
type Router struct {
	store    ticket.Store
	notifier Notifier // may be nil
	logger   *slog.Logger

	// Now is the clock used for window validation and protocol IDs.
	// Overridable in tests.
	Now func() time.Time
}

// New creates a router backed by store. notifier may be nil.
func New(store ticket.Store, notifier Notifier, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:    store,
		notifier: notifier,
		logger:   logger,
		Now:      time.Now,
	}
}

// Handle dispatches the event to its intent handler and returns the reply.
func (r *Router) Handle(ctx context.Context, req *protocol.WebhookRequest) *protocol.WebhookResponse {
	intent := Intent(req.IntentName())
	r.logger.Info("fulfillment event", "intent", string(intent), "session", req.Session)

	switch intent {
	case IntentOpenTicket:
		return r.openTicket(ctx, req)
	case IntentTicketStatus:
		return r.ticketStatus(req)
	case IntentFAQ:
		return r.faq(req)
	case IntentHandoff:
		return reply(replyHandoff)
	default:
		return reply(replyFallback)
	}
}

func (r *Router) openTicket(ctx context.Context, req *protocol.WebhookRequest) *protocol.WebhookResponse {
	contato := req.Param("contato")
	if contato == "" {
		contato = req.SenderUsername()
	}

	// numero_cliente doubles as the customer's phone and is validated
	// independently of the contact preference below.
	numeroCliente, ok := contact.NormalizePhone(req.Param("numero_cliente"))
	if !ok {
		return reply(replyNeedValidPhone)
	}

	preferencia, ok := contact.Normalize(contato)
	if !ok {
		return reply(replyNeedContact)
	}

	now := r.Now()
	var when time.Time
	if dateStr, timeStr := req.Param("janela_data"), req.Param("janela_hora"); dateStr != "" && timeStr != "" {
		parsed, err := schedule.ParseWindow(dateStr, timeStr)
		if err != nil {
			r.logger.Warn("unparseable window", "date", dateStr, "time", timeStr, "error", err)
			return reply(replyWindowUnparseable)
		}
		if !parsed.After(now) || !schedule.IsBusinessHour(parsed) {
			return reply(replyWindowInvalid)
		}
		when = parsed
	} else {
		when = schedule.NextSlot(now)
	}
	whenISO := when.UTC().Format(time.RFC3339)

	t := &protocol.Ticket{
		Protocolo:          ticket.NewProtocol(now),
		Problema:           req.Param("problema"),
		Dispositivo:        req.Param("dispositivo"),
		Endereco:           req.Param("endereco"),
		Cidade:             req.Param("cidade"),
		Plano:              req.Param("plano"),
		NumeroCliente:      numeroCliente,
		PreferenciaContato: preferencia,
		Nome:               req.Param("nome"),
		WhenISO:            whenISO,
		Etapa:              protocol.EtapaAgendado,
		Previsao:           whenISO,
		CreatedAt:          now,
	}
	if err := r.store.Save(t); err != nil {
		r.logger.Error("save ticket", "protocolo", t.Protocolo, "error", err)
		return reply(replySaveFailed)
	}
	r.logger.Info("ticket created",
		"protocolo", t.Protocolo,
		"cidade", t.Cidade,
		"janela", whenISO,
	)

	r.notify(ctx, fmt.Sprintf("Novo chamado %s: %s em %s, %s. Janela: %s.",
		t.Protocolo, problemaOuPadrao(t.Problema), t.Endereco, t.Cidade, whenISO))

	text := fmt.Sprintf(
		"Chamado %s criado para %s em %s, %s. Janela: %s. Você receberá atualizações pelo contato informado. Posso ajudar em mais algo?",
		t.Protocolo, problemaOuPadrao(t.Problema), t.Endereco, t.Cidade, whenISO)
	return &protocol.WebhookResponse{
		FulfillmentText: text,
		OutputContexts: []protocol.Context{{
			Name:          req.Session + openTicketContext,
			LifespanCount: openTicketContextLifespan,
			Parameters:    map[string]any{"protocolo": t.Protocolo, "previsao": whenISO},
		}},
	}
}

func (r *Router) ticketStatus(req *protocol.WebhookRequest) *protocol.WebhookResponse {
	t := r.resolveTicket(req)
	if t == nil {
		return reply(replyTicketNotFound)
	}
	return reply(fmt.Sprintf(
		"Seu chamado %s está em **%s**. Previsão de atendimento: **%s**. Posso ajudar em mais algo?",
		t.Protocolo, t.Etapa, t.Previsao))
}

// resolveTicket tries, in order: the protocolo parameter, the newest ticket
// matching the contato parameter, and the protocolo carried by the
// open-ticket output context. A supplied contato that matches nothing ends
// the search; the context is only consulted when no contato was given.
func (r *Router) resolveTicket(req *protocol.WebhookRequest) *protocol.Ticket {
	if protocolo := req.Param("protocolo"); protocolo != "" {
		if t, err := r.store.Get(protocolo); err == nil {
			return t
		}
	}
	if contato := req.Param("contato"); contato != "" {
		normalized, ok := contact.Normalize(contato)
		if !ok {
			return nil
		}
		t, err := r.store.FindByContact(normalized)
		if err != nil {
			return nil
		}
		return t
	}
	if c := req.ContextBySuffix(openTicketContext); c != nil {
		if protocolo := c.Param("protocolo"); protocolo != "" {
			if t, err := r.store.Get(protocolo); err == nil {
				return t
			}
		}
	}
	return nil
}

func (r *Router) notify(ctx context.Context, text string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, text); err != nil {
		r.logger.Warn("ops notification failed", "error", err)
	}
}

func problemaOuPadrao(problema string) string {
	if problema == "" {
		return "problema informado"
	}
	return problema
}

func reply(text string) *protocol.WebhookResponse {
	return &protocol.WebhookResponse{
		FulfillmentText: text,
		OutputContexts:  []protocol.Context{},
	}
}
