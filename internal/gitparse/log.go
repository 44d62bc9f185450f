package gitparse

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// LogFormat is the --format template understood by ParseLog.
const LogFormat = "--format=sha: %H%nparents: %p%nrefs: %D%nauthor: %an%ndate: %ct%nsubject: %s%n" + logRecordSentinelConstant

const (
	logRecordSentinelConstant = "-----"
	logFieldShaConstant       = "sha"
	logFieldParentsConstant   = "parents"
	logFieldRefsConstant      = "refs"
	logFieldAuthorConstant    = "author"
	logFieldDateConstant      = "date"
	logFieldSubjectConstant   = "subject"
	refsSeparatorConstant     = ","
	parentsSeparatorConstant  = " "
)

var logFieldPattern = regexp.MustCompile(`^(.*?): (.*)$`)

// ParseLog reads commits rendered with LogFormat in the order git emitted them.
// A record is only produced once its sentinel line is seen.
func ParseLog(output string) []Commit {
	commits := []Commit{}
	current := Commit{}
	for _, line := range splitLines(output) {
		if line == logRecordSentinelConstant {
			commits = append(commits, current)
			current = Commit{}
			continue
		}
		match := logFieldPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		value := match[2]
		switch match[1] {
		case logFieldShaConstant:
			current.Sha = value
		case logFieldParentsConstant:
			current.Parents = lo.Compact(strings.Split(value, parentsSeparatorConstant))
		case logFieldRefsConstant:
			if len(value) > 0 {
				current.Refs = lo.Map(strings.Split(value, refsSeparatorConstant), func(reference string, _ int) string {
					return strings.TrimSpace(reference)
				})
			}
		case logFieldAuthorConstant:
			current.Author = value
		case logFieldDateConstant:
			current.Date = value
		case logFieldSubjectConstant:
			current.Subject = value
		}
	}
	return commits
}
