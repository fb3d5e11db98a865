package protocol

import "time"

// EtapaAgendado is the only stage a ticket ever carries: visits are scheduled
// at creation and never transition afterwards.
const EtapaAgendado = "Agendado"

// Ticket is a scheduled service-visit record opened through the bot.
type Ticket struct {
	Protocolo          string    `json:"protocolo"`
	Problema           string    `json:"problema,omitempty"`
	Dispositivo        string    `json:"dispositivo,omitempty"`
	Endereco           string    `json:"endereco,omitempty"`
	Cidade             string    `json:"cidade,omitempty"`
	Plano              string    `json:"plano,omitempty"`
	NumeroCliente      string    `json:"numero_cliente"`      // digits only, 10-13
	PreferenciaContato string    `json:"preferencia_contato"` // normalized phone or e-mail, exactly one
	Nome               string    `json:"nome,omitempty"`
	WhenISO            string    `json:"when_iso"` // service window, RFC 3339 UTC
	Etapa              string    `json:"etapa"`
	Previsao           string    `json:"previsao"` // mirrors WhenISO for response shaping
	CreatedAt          time.Time `json:"created_at"`
}
