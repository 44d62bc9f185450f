package credentials

import "strings"

// PromptKind classifies what a credential prompt is asking for.
type PromptKind string

// Prompt kinds understood by the broker.
const (
	PromptKindUsername     PromptKind = PromptKind("username")
	PromptKindPassword     PromptKind = PromptKind("password")
	PromptKindPassphrase   PromptKind = PromptKind("passphrase")
	PromptKindConfirmation PromptKind = PromptKind("confirmation")
	PromptKindUnknown      PromptKind = PromptKind("unknown")
)

const (
	confirmationAcceptAnswerConstant = "yes"
	confirmationRejectAnswerConstant = "no"
	usernamePromptPrefixConstant     = "username for"
	passwordPromptPrefixConstant     = "password for"
	passphrasePromptPrefixConstant   = "enter passphrase"
	usernamePromptMarkerConstant     = "username"
	passphrasePromptMarkerConstant   = "passphrase"
	passwordPromptMarkerConstant     = "password"
	continueConnectingMarkerConstant = "continue connecting"
	yesNoMarkerConstant              = "yes/no"
)

// relayRequest is one newline-delimited JSON message sent by the relay.
type relayRequest struct {
	Kind   PromptKind `json:"kind"`
	Prompt string     `json:"prompt"`
}

// relayResponse answers a relayRequest with either a secret or an error message.
type relayResponse struct {
	Secret string `json:"secret,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ClassifyPrompt derives the requested secret kind from the text git or ssh passes to the askpass program.
// The fixed prefixes printed by git and ssh take precedence over words in the URL or host that follows them.
func ClassifyPrompt(prompt string) PromptKind {
	normalizedPrompt := strings.ToLower(strings.TrimSpace(prompt))
	switch {
	case strings.HasPrefix(normalizedPrompt, usernamePromptPrefixConstant):
		return PromptKindUsername
	case strings.HasPrefix(normalizedPrompt, passwordPromptPrefixConstant):
		return PromptKindPassword
	case strings.HasPrefix(normalizedPrompt, passphrasePromptPrefixConstant):
		return PromptKindPassphrase
	case strings.Contains(normalizedPrompt, continueConnectingMarkerConstant), strings.Contains(normalizedPrompt, yesNoMarkerConstant):
		return PromptKindConfirmation
	case strings.Contains(normalizedPrompt, passphrasePromptMarkerConstant):
		return PromptKindPassphrase
	case strings.Contains(normalizedPrompt, passwordPromptMarkerConstant):
		return PromptKindPassword
	case strings.Contains(normalizedPrompt, usernamePromptMarkerConstant):
		return PromptKindUsername
	default:
		return PromptKindUnknown
	}
}
