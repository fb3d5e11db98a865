package fulfill

// Scripted Portuguese copy. The ** markers render as bold on the messaging
// platforms Dialogflow fronts.
const (
	replyNeedValidPhone = "Preciso de um **número de telefone válido com DDD** (10 a 13 dígitos). Pode confirmar?"

	replyNeedContact = "Preciso de um **telefone com DDD** ou **e-mail** válido para prosseguir. Pode me informar?"

	replyWindowInvalid = "Agendamos apenas **dias úteis** entre **08:00–18:00 (BRT)** e a data/hora precisa ser **futura**. Pode sugerir outro horário?"

	replyWindowUnparseable = "Não consegui entender a **data/horário** informados. Pode repetir?"

	replySaveFailed = "Não consegui registrar seu chamado agora. Pode tentar de novo em instantes?"

	replyTicketNotFound = "Não encontrei seu chamado. Informe o **protocolo** ou seu **telefone/e-mail** cadastrado para eu localizar."

	replyFAQMenu = "Posso falar sobre **horário, planos/preços, preparo, reagendamento ou senha do Wi-Fi**. Qual desses você quer?"

	replyHandoff = "Certo! Vou te **transferir** para um atendente humano. Antes, pode me dar uma nota de **0 a 10** para este atendimento?"

	replyFallback = "Desculpe, não entendi. Você pode **resumir em uma frase**? Exemplos: abrir chamado, status, planos, horário."
)
