// Package status assembles a repository status snapshot from several git queries.
package status
