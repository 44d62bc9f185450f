package gitparse

import (
	"regexp"
	"strings"
)

const (
	remoteDirectionFetchConstant = "fetch"
	remoteDirectionPushConstant  = "push"
)

var remoteLinePattern = regexp.MustCompile(`^(.+)\t(.+) \((.+)\)$`)

// ParseRemotes reads `git remote -v` output. Empty output yields nil rather than an empty map.
func ParseRemotes(output string) RemoteMap {
	if len(output) == 0 {
		return nil
	}

	remotes := RemoteMap{}
	for _, line := range splitLines(output) {
		match := remoteLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		name, url, direction := match[1], match[2], match[3]
		remote := remotes[name]
		switch direction {
		case remoteDirectionFetchConstant:
			remote.Fetch = url
		case remoteDirectionPushConstant:
			remote.Push = url
		default:
			continue
		}
		remotes[name] = remote
	}
	return remotes
}

func splitLines(output string) []string {
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}
