package protocol

import (
	"math"
	"strconv"
	"strings"
)

// WebhookRequest is the inbound Dialogflow ES fulfillment event. Every nested
// field may be absent from the wire; use the accessors below instead of
// dereferencing the chain by hand.
type WebhookRequest struct {
	Session                     string                       `json:"session,omitempty"`
	ResponseID                  string                       `json:"responseId,omitempty"`
	QueryResult                 *QueryResult                 `json:"queryResult,omitempty"`
	OriginalDetectIntentRequest *OriginalDetectIntentRequest `json:"originalDetectIntentRequest,omitempty"`
}

// QueryResult carries the NLU classification for one conversational turn.
type QueryResult struct {
	QueryText      string         `json:"queryText,omitempty"`
	Intent         *Intent        `json:"intent,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	OutputContexts []Context      `json:"outputContexts,omitempty"`
}

// Intent identifies the classified conversational action.
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Context is a piece of conversational state carried between turns.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// OriginalDetectIntentRequest wraps the platform-specific payload of the
// channel the message arrived on (Telegram, etc.).
type OriginalDetectIntentRequest struct {
	Source  string          `json:"source,omitempty"`
	Payload *RequestPayload `json:"payload,omitempty"`
}

// RequestPayload is the channel payload. Only the sender path is modeled.
type RequestPayload struct {
	Data *PayloadData `json:"data,omitempty"`
}

// PayloadData holds the channel message envelope.
type PayloadData struct {
	From *PayloadFrom `json:"from,omitempty"`
}

// PayloadFrom identifies the message sender on the originating channel.
type PayloadFrom struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// WebhookResponse is the outbound fulfillment reply.
type WebhookResponse struct {
	FulfillmentText string    `json:"fulfillmentText"`
	OutputContexts  []Context `json:"outputContexts"`
}

// IntentName returns the classified intent display name, or "" when the
// event carries no classification.
func (r *WebhookRequest) IntentName() string {
	if r == nil || r.QueryResult == nil || r.QueryResult.Intent == nil {
		return ""
	}
	return r.QueryResult.Intent.DisplayName
}

// Param returns the named query parameter coerced to a string, or "" when
// absent. Dialogflow delivers numeric parameters as float64.
func (r *WebhookRequest) Param(name string) string {
	if r == nil || r.QueryResult == nil {
		return ""
	}
	return stringify(r.QueryResult.Parameters[name])
}

// SenderUsername returns the sender identifier from the originating channel's
// payload, or "" when any link of the chain is absent.
func (r *WebhookRequest) SenderUsername() string {
	if r == nil || r.OriginalDetectIntentRequest == nil {
		return ""
	}
	p := r.OriginalDetectIntentRequest.Payload
	if p == nil || p.Data == nil || p.Data.From == nil {
		return ""
	}
	return p.Data.From.Username
}

// ContextBySuffix returns the first output context whose fully-qualified name
// ends with suffix, or nil.
func (r *WebhookRequest) ContextBySuffix(suffix string) *Context {
	if r == nil || r.QueryResult == nil {
		return nil
	}
	for i := range r.QueryResult.OutputContexts {
		if strings.HasSuffix(r.QueryResult.OutputContexts[i].Name, suffix) {
			return &r.QueryResult.OutputContexts[i]
		}
	}
	return nil
}

// Param returns the named context parameter coerced to a string.
func (c *Context) Param(name string) string {
	if c == nil {
		return ""
	}
	return stringify(c.Parameters[name])
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
