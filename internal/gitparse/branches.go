package gitparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	currentBranchMarkerConstant = "* "
	symbolicRefShaConstant      = "->"
	detachedHeadPrefixConstant  = "("
)

var branchLinePattern = regexp.MustCompile(`^([ \*] )(\S+) +(\S+)(?: \[(\S+?)(?:: (?:ahead (\d+)(?:, )?)?(?:behind (\d+))?)?\])? (.*)$`)

// ParseBranches reads `git branch -vv --no-color` output, local or remote.
// Symbolic refs such as `origin/HEAD -> origin/main` and detached HEAD lines such as
// `(HEAD detached at 1a2b3c4)` are discarded.
func ParseBranches(output string) []Branch {
	return lo.FilterMap(splitLines(output), func(line string, _ int) (Branch, bool) {
		match := branchLinePattern.FindStringSubmatch(line)
		if match == nil || match[3] == symbolicRefShaConstant || strings.HasPrefix(match[2], detachedHeadPrefixConstant) {
			return Branch{}, false
		}
		return Branch{
			Name:    match[2],
			Remote:  match[4],
			Status:  Divergence{Ahead: parseCount(match[5]), Behind: parseCount(match[6])},
			Commit:  BranchCommit{Sha: match[3], Subject: match[7]},
			Current: match[1] == currentBranchMarkerConstant,
		}, true
	})
}

// parseCount converts an optional decimal capture, treating absence as zero.
func parseCount(value string) int {
	if len(value) == 0 {
		return 0
	}
	count, conversionError := strconv.Atoi(value)
	if conversionError != nil || count < 0 {
		return 0
	}
	return count
}

// ParseCount converts a `--count` query result, ignoring surrounding whitespace.
func ParseCount(output string) (int, error) {
	return strconv.Atoi(trimOutput(output))
}
