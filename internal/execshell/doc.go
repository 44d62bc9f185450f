// Package execshell provides structured helpers for invoking the git executable.
//
// It wraps os/exec with logging and lifecycle observers via ShellExecutor,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions gitbridge uses to run git in a testable manner. Every call
// spawns exactly one process; nothing is pooled or retried.
package execshell
