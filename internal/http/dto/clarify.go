package dto

// ClarifyRequest is the body of POST /v1/clarify/{request_id}: the
// user's raw reply to a presented clarification menu.
type ClarifyRequest struct {
	Response string `json:"response" binding:"required"`
}

// ClarifyResponse reports how the reply resolved.
type ClarifyResponse struct {
	Kind         string   `json:"kind"` // clarify.ResultKind
	Value        string   `json:"value,omitempty"`
	FactKey      string   `json:"fact_key,omitempty"`
	Error        string   `json:"error,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}
