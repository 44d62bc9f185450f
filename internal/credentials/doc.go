// Package credentials brokers authentication secrets for git operations that touch a remote.
//
// Secrets are never written to disk, git configuration, or command arguments.
// For each authenticated invocation a SocketBroker opens an ephemeral unix-domain
// socket that answers credential prompts, and the git process is pointed at a relay
// program (GIT_ASKPASS or SSH_ASKPASS) that forwards each prompt over that socket.
// Bridge.Run owns the channel for exactly the lifetime of one invocation.
package credentials
