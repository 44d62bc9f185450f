// Package gitcli runs git invocations on behalf of repository services and turns
// nonzero exits into classified CommandError values.
//
// Every invocation disables pre-configured credential helpers so authenticated
// operations can only obtain secrets through the credential bridge.
package gitcli
