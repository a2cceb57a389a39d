// internal/models/creation.go
package models

// ApprovalMarker is the token the moderator replies with for a safe idea
const ApprovalMarker = "APPROVED"

// RedirectMessage is the gentle alternative offered for an idea that is not approved
const RedirectMessage = "Oh, that idea sounds a little gloomy! Why don't we paint a unicorn instead?"

// CreationRequest is one submission from the creation view
type CreationRequest struct {
	Idea string `json:"idea" form:"idea"`
}

// Verdict is the moderator's decision. Message is ApprovalMarker or a
// child-friendly redirect shown verbatim.
type Verdict struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

// Illustration is a rendered image. It is displayed once and never stored.
type Illustration struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Prompt   string `json:"prompt"`
}

// AttemptState labels the steps of a creation attempt
type AttemptState string

const (
	StateSubmitted        AttemptState = "submitted"
	StateModerating       AttemptState = "moderating"
	StateRejected         AttemptState = "rejected"
	StateGenerating       AttemptState = "generating"
	StateRendered         AttemptState = "rendered"
	StateGenerationFailed AttemptState = "generation_failed"
)

// Terminal reports whether the attempt has finished
func (s AttemptState) Terminal() bool {
	switch s {
	case StateRejected, StateRendered, StateGenerationFailed:
		return true
	}
	return false
}

// AttemptEvent is published on every state transition
type AttemptEvent struct {
	AttemptID string       `json:"attempt_id"`
	State     AttemptState `json:"state"`
	Message   string       `json:"message,omitempty"`
}

// AttemptResult is what the creation view renders after an attempt
type AttemptResult struct {
	AttemptID    string        `json:"attempt_id"`
	State        AttemptState  `json:"state"`
	Verdict      Verdict       `json:"verdict"`
	Illustration *Illustration `json:"illustration,omitempty"`
	Record       *AuditRecord  `json:"record,omitempty"`
	UserMessage  string        `json:"user_message"`
	Detail       string        `json:"detail,omitempty"`
}
