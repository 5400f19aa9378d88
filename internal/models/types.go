package models

import (
	"encoding/json"
	"strconv"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentItemDetails Intent = "item_details"
	IntentCoCDetails  Intent = "coc_details"
	IntentReport      Intent = "report"
	IntentTracking    Intent = "tracking"
	IntentUnknown     Intent = "unknown"
)

// ParseIntent maps a raw router string onto the closed intent set.
// Anything outside the set is unknown.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentItemDetails, IntentCoCDetails, IntentReport, IntentTracking:
		return Intent(s)
	default:
		return IntentUnknown
	}
}

// Parameter vocabulary shared by the router, the requirement policy and
// the backend clients.
const (
	ParamItem         = "item"
	ParamProduct      = "product" // synonym for item
	ParamModelItem    = "model_item"
	ParamCountryQuery = "country_query"
	ParamReportName   = "report_name"
	ParamSalesOrder   = "sales_order"
	ParamDeliveryName = "delivery_name"
	ParamPONumber     = "po_number"
)

// ParamBag maps parameter names to user-supplied values. An empty string
// counts as "not provided".
type ParamBag map[string]string

// Get returns the value for key, or "" when absent.
func (p ParamBag) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Has reports whether key holds a non-empty value.
func (p ParamBag) Has(key string) bool {
	return p.Get(key) != ""
}

// Clone returns an independent copy of the bag.
func (p ParamBag) Clone() ParamBag {
	out := make(ParamBag, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies non-empty values from other into p. Empty values never
// erase something already collected.
func (p ParamBag) Merge(other ParamBag) {
	for k, v := range other {
		if v != "" {
			p[k] = v
		}
	}
}

// UnmarshalJSON accepts string values and stringifies numbers and booleans,
// since the router LLM occasionally emits order numbers as JSON numbers.
// Other value types are dropped.
func (p *ParamBag) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ParamBag, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	*p = out
	return nil
}

// RouterResult is the normalized outcome of an LLM routing call. It is
// always well-formed: on any upstream failure Intent is unknown and Error
// carries the diagnostic.
type RouterResult struct {
	Intent  Intent   `json:"intent"`
	Params  ParamBag `json:"params"`
	Missing []string `json:"missing"`
	Error   string   `json:"error,omitempty"`
}

// PendingTurn is the per-session state for an intent still waiting on
// parameters. Required holds unmet requirement names: single keys and/or
// the composite any-of label.
type PendingTurn struct {
	Intent    Intent   `json:"intent"`
	Collected ParamBag `json:"collected"`
	Required  []string `json:"required"`
	Optional  []string `json:"optional"`
}

// BackendResult is the canonical shape of a backend response: either a
// structured field mapping or one opaque text payload, never both.
type BackendResult struct {
	Fields map[string]any
	Text   string
}

// TextResult wraps an opaque text payload.
func TextResult(text string) *BackendResult {
	return &BackendResult{Text: text}
}

// FieldsResult wraps a structured mapping.
func FieldsResult(fields map[string]any) *BackendResult {
	return &BackendResult{Fields: fields}
}

// IsText reports whether the result carries the opaque text form.
func (r *BackendResult) IsText() bool {
	return r.Fields == nil
}

// ChatRequest is the inbound wire shape for one user turn.
type ChatRequest struct {
	Message string   `json:"message"`
	Params  ParamBag `json:"params,omitempty"`
}

// ChatReply is the outbound wire shape. AskParams signals the client to
// render an input form for the listed parameter names.
type ChatReply struct {
	Reply     string   `json:"reply"`
	AskParams bool     `json:"ask_params"`
	Required  []string `json:"required,omitempty"`
	Optional  []string `json:"optional,omitempty"`
}

// RemoteChatRequest is the NATS request shape: the same turn contract with
// an explicit session identifier instead of a cookie.
type RemoteChatRequest struct {
	SessionID string   `json:"session_id"`
	Message   string   `json:"message"`
	Params    ParamBag `json:"params,omitempty"`
}
