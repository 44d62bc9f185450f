package credentials

import "strings"

// AuthSpec describes how a single remote operation authenticates.
// An SSH identity is selected whenever KeyPath is set; otherwise the
// username and password answer interactive credential prompts.
type AuthSpec struct {
	Username              string
	Password              string
	KeyPath               string
	Passphrase            string
	AcceptUnknownHostKeys bool
}

// UsesSSHIdentity reports whether an SSH private key was supplied.
func (spec AuthSpec) UsesSSHIdentity() bool {
	return len(strings.TrimSpace(spec.KeyPath)) > 0
}

// secretFor resolves the answer to a prompt of the given kind.
func (spec AuthSpec) secretFor(kind PromptKind) (string, bool) {
	switch kind {
	case PromptKindUsername:
		return spec.Username, len(spec.Username) > 0
	case PromptKindPassword:
		return spec.Password, len(spec.Password) > 0
	case PromptKindPassphrase:
		return spec.Passphrase, len(spec.Passphrase) > 0
	case PromptKindConfirmation:
		if spec.AcceptUnknownHostKeys {
			return confirmationAcceptAnswerConstant, true
		}
		return confirmationRejectAnswerConstant, true
	default:
		return "", false
	}
}
