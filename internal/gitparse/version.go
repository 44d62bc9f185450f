package gitparse

import (
	"regexp"
	"strings"
)

var versionPattern = regexp.MustCompile(` (\d\S+)`)

// ParseVersion extracts the first token starting with a digit from `git --version` output.
func ParseVersion(output string) (string, bool) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func trimOutput(output string) string {
	return strings.TrimSpace(output)
}
