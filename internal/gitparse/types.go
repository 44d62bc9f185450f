package gitparse

// FileType distinguishes files from directories in a status file map.
type FileType string

// Supported file types.
const (
	FileTypeFile      FileType = FileType("f")
	FileTypeDirectory FileType = FileType("d")
)

// UntrackedStatusCode is the two-letter code git reports for untracked paths.
const UntrackedStatusCode = "??"

// FileEntry describes one path in a repository status.
type FileEntry struct {
	Type    FileType `json:"type" yaml:"type"`
	Status  string   `json:"status,omitempty" yaml:"status,omitempty"`
	OldName string   `json:"oldName,omitempty" yaml:"oldName,omitempty"`
}

// FileMap indexes file entries by repository-relative path. Directory keys end with a slash.
type FileMap map[string]*FileEntry

// Commit is one record of the custom log template.
type Commit struct {
	Sha     string   `json:"sha" yaml:"sha"`
	Parents []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Refs    []string `json:"refs,omitempty" yaml:"refs,omitempty"`
	Author  string   `json:"author" yaml:"author"`
	Date    string   `json:"date" yaml:"date"`
	Subject string   `json:"subject" yaml:"subject"`
}

// Divergence counts commits between a local branch and its tracking branch.
type Divergence struct {
	Ahead  int `json:"ahead" yaml:"ahead"`
	Behind int `json:"behind" yaml:"behind"`
}

// BranchCommit identifies the commit a branch points at.
type BranchCommit struct {
	Sha     string `json:"sha" yaml:"sha"`
	Subject string `json:"subject" yaml:"subject"`
}

// Branch is one line of `git branch -vv`.
type Branch struct {
	Name    string       `json:"name" yaml:"name"`
	Remote  string       `json:"remote,omitempty" yaml:"remote,omitempty"`
	Status  Divergence   `json:"status" yaml:"status"`
	Commit  BranchCommit `json:"commit" yaml:"commit"`
	Current bool         `json:"current,omitempty" yaml:"current,omitempty"`
}

// Remote holds the fetch and push URLs configured for one remote.
type Remote struct {
	Fetch string `json:"fetch,omitempty" yaml:"fetch,omitempty"`
	Push  string `json:"push,omitempty" yaml:"push,omitempty"`
}

// RemoteMap indexes remotes by name. A repository without remotes yields a nil map.
type RemoteMap map[string]Remote
