package fulfill

import (
	"strings"

	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// faqAnswers maps FAQ topics to their scripted answers. Lookup is
// case-insensitive on the topic parameter.
var faqAnswers = map[string]string{
	"horario":       "Nosso suporte funciona **segunda a sábado, 08:00–18:00**.",
	"planos":        "Planos: **Básico 50Mb R$79 | Plus 200Mb R$99 | Turbo 500Mb R$129 | Giga 1Gb R$159**.",
	"precos":        "Preços variam por cidade; referência: **50Mb R$79, 200Mb R$99, 500Mb R$129, 1Gb R$159**.",
	"preparo":       "Deixe **modem/roteador ligados** e acessíveis; tenha documento em mãos; anote luzes do equipamento.",
	"reagendamento": "Pode **reagendar sem custo até 2h** antes da janela. Informe seu protocolo.",
	"senha_wifi":    "Acesse o roteador (ex.: **192.168.0.1**) → Wireless → Password e defina senha forte (10+ caracteres).",
}

func (r *Router) faq(req *protocol.WebhookRequest) *protocol.WebhookResponse {
	key := strings.ToLower(req.Param("faq_topico"))
	if answer, ok := faqAnswers[key]; ok {
		return reply(answer)
	}
	return reply(replyFAQMenu)
}
