package gitparse

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	branchHeaderPrefixConstant = "#"
	pathSeparatorConstant      = "/"
	quoteCharacterConstant     = `"`
	statusCodeLengthConstant   = 2
	statusPathOffsetConstant   = 3
)

var (
	branchHeaderPattern   = regexp.MustCompile(`^## (?:No commits yet on )?(.+?)(?:$|\.\.\.(.+?)(?:$| \[(?:(?:ahead (\d+)(?:,\s*)?)?(?:behind (\d+))?|(gone))\]))`)
	statusFilenamePattern = regexp.MustCompile(`([^ "]+|(".*?"))($| -> ([^ ]+|(".*"))$)`)
)

// BranchHeader is the `## ...` line of `git status --porcelain -b`.
type BranchHeader struct {
	Local  string
	Remote string
	Ahead  int
	Behind int
	// Gone reports that the tracked remote branch no longer exists.
	Gone bool
}

// StatusLine is one path line of `git status --porcelain`.
type StatusLine struct {
	Code    string
	Path    string
	OldPath string
}

// ParseBranchHeader parses a porcelain branch header. Ahead and behind are zero when absent.
func ParseBranchHeader(line string) (BranchHeader, bool) {
	match := branchHeaderPattern.FindStringSubmatch(line)
	if match == nil {
		return BranchHeader{}, false
	}
	return BranchHeader{
		Local:  match[1],
		Remote: match[2],
		Ahead:  parseCount(match[3]),
		Behind: parseCount(match[4]),
		Gone:   len(match[5]) > 0,
	}, true
}

// IsBranchHeader reports whether a porcelain line carries branch information rather than a path.
func IsBranchHeader(line string) bool {
	return strings.HasPrefix(line, branchHeaderPrefixConstant)
}

// ParseStatusLine parses a porcelain path line. Renames report the destination as Path
// and the source as OldPath; quoting around either name is removed.
func ParseStatusLine(line string) (StatusLine, bool) {
	if len(line) <= statusPathOffsetConstant {
		return StatusLine{}, false
	}

	code := line[:statusCodeLengthConstant]
	rawPath := line[statusPathOffsetConstant:]
	if code == UntrackedStatusCode {
		return StatusLine{Code: code, Path: CleanFilename(rawPath)}, true
	}

	names := SplitStatusFilenames(rawPath)
	switch len(names) {
	case 1:
		return StatusLine{Code: code, Path: names[0]}, true
	case 2:
		return StatusLine{Code: code, Path: names[1], OldPath: names[0]}, true
	default:
		return StatusLine{}, false
	}
}

// SplitStatusFilenames returns one name, or the source and destination of a rename.
// The arrow only separates names when it sits unquoted between two name tokens.
func SplitStatusFilenames(value string) []string {
	match := statusFilenamePattern.FindStringSubmatch(value)
	if match == nil {
		return nil
	}
	names := []string{CleanFilename(match[1])}
	if len(match[4]) > 0 {
		names = append(names, CleanFilename(match[4]))
	}
	return names
}

// CleanFilename removes the quoting git applies to names with special characters and
// decodes the escape sequences inside it when they are well formed.
func CleanFilename(name string) string {
	if !strings.HasPrefix(name, quoteCharacterConstant) {
		return name
	}
	if unquoted, unquoteError := strconv.Unquote(name); unquoteError == nil {
		return unquoted
	}
	if len(name) < 2 {
		return name
	}
	return name[1 : len(name)-1]
}

// AddListedPath records a path from `git ls-files` along with an entry for every ancestor
// directory not already present.
func (files FileMap) AddListedPath(line string) {
	fullName := CleanFilename(line)
	if len(fullName) == 0 {
		return
	}

	files.addAncestorDirectories(fullName)
	files[fullName] = &FileEntry{Type: entryTypeFor(fullName)}
}

func (files FileMap) addAncestorDirectories(path string) {
	segments := strings.Split(path, pathSeparatorConstant)
	for index := 0; index < len(segments)-1; index++ {
		directoryName := strings.Join(segments[:index+1], pathSeparatorConstant) + pathSeparatorConstant
		if _, exists := files[directoryName]; !exists {
			files[directoryName] = &FileEntry{Type: FileTypeDirectory}
		}
	}
}

func entryTypeFor(path string) FileType {
	if strings.HasSuffix(path, pathSeparatorConstant) {
		return FileTypeDirectory
	}
	return FileTypeFile
}

// ParseFileListing builds a file map from `git ls-files` output.
func ParseFileListing(output string) FileMap {
	files := FileMap{}
	for _, line := range splitLines(output) {
		files.AddListedPath(line)
	}
	return files
}

// ApplyStatusLine merges a porcelain entry into the map, creating it and any missing
// ancestor directories when unseen.
func (files FileMap) ApplyStatusLine(statusLine StatusLine) {
	files.addAncestorDirectories(statusLine.Path)
	entry, exists := files[statusLine.Path]
	if !exists {
		entry = &FileEntry{Type: entryTypeFor(statusLine.Path)}
		files[statusLine.Path] = entry
	}
	entry.Status = statusLine.Code
	if len(statusLine.OldPath) > 0 {
		entry.OldName = statusLine.OldPath
	}
}

// MarkUntrackedDescendants gives every entry without a status the untracked code when it
// lies under one of the untracked directories.
func (files FileMap) MarkUntrackedDescendants(untrackedDirectories []string) {
	if len(untrackedDirectories) == 0 {
		return
	}
	for path, entry := range files {
		if len(entry.Status) > 0 {
			continue
		}
		for _, directory := range untrackedDirectories {
			if strings.HasPrefix(path, directory) {
				entry.Status = UntrackedStatusCode
				break
			}
		}
	}
}

// IsUntrackedDirectory reports whether a status line marks a whole directory as untracked.
func (statusLine StatusLine) IsUntrackedDirectory() bool {
	return statusLine.Code == UntrackedStatusCode && strings.HasSuffix(statusLine.Path, pathSeparatorConstant)
}
