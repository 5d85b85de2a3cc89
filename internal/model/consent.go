package model

// ResponseTypeCode is the only response type the consent flow issues.
const ResponseTypeCode = "code"

// ConsentRequest is the authorization request a user is asked to approve. It is
// never persisted; it travels in the query string and the signed consent ticket.
type ConsentRequest struct {
	ClientID     string `json:"client_id"`
	RedirectURI  string `json:"redirect_uri"`
	Scope        string `json:"scope"`
	State        string `json:"state,omitempty"`
	ResponseType string `json:"response_type"`
}

// Decision is the user's answer on the consent page.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionApprove
)

// ParseDecision maps the consent form value to a Decision.
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "approve":
		return DecisionApprove, true
	case "deny":
		return DecisionDeny, true
	default:
		return DecisionDeny, false
	}
}

func (d Decision) String() string {
	if d == DecisionApprove {
		return "approve"
	}
	return "deny"
}
