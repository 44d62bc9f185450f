package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/gitparse"
)

const (
	revListSubcommandConstant        = "rev-list"
	headReferenceConstant            = "HEAD"
	countFlagConstant                = "--count"
	lsFilesSubcommandConstant        = "ls-files"
	cachedFlagConstant               = "--cached"
	othersFlagConstant               = "--others"
	excludeStandardFlagConstant      = "--exclude-standard"
	statusSubcommandConstant         = "status"
	porcelainFlagConstant            = "--porcelain"
	branchFlagConstant               = "-b"
	ambiguousArgumentMarkerConstant  = "ambiguous argument"
	runnerMissingMessageConstant     = "git runner not configured"
	commitCountErrorTemplateConstant = "unable to count commits: %w"
	commitCountParseTemplateConstant = "unable to parse commit count %q: %w"
	fileListingErrorTemplateConstant = "unable to list repository files: %w"
	statusQueryErrorTemplateConstant = "unable to query working tree status: %w"
)

// ErrRunnerNotConfigured indicates the reconciler was constructed without a git runner.
var ErrRunnerNotConfigured = errors.New(runnerMissingMessageConstant)

// GitRunner executes a single git invocation and returns its standard output.
type GitRunner interface {
	Run(executionContext context.Context, invocation gitcli.Invocation) (string, error)
}

// CommitSummary counts commits on the current branch and its divergence from the tracking branch.
type CommitSummary struct {
	Total  int `json:"total" yaml:"total"`
	Ahead  int `json:"ahead" yaml:"ahead"`
	Behind int `json:"behind" yaml:"behind"`
}

// RemoteError marks a tracking problem that is reported rather than raised.
type RemoteError struct {
	Code gitcli.ErrorKind `json:"code" yaml:"code"`
}

// BranchSummary names the current branch and its tracking branch.
type BranchSummary struct {
	Local       string       `json:"local,omitempty" yaml:"local,omitempty"`
	Remote      string       `json:"remote,omitempty" yaml:"remote,omitempty"`
	RemoteError *RemoteError `json:"remoteError,omitempty" yaml:"remoteError,omitempty"`
}

// RepositoryStatus is a snapshot assembled fresh for every request.
type RepositoryStatus struct {
	Files    gitparse.FileMap `json:"files" yaml:"files"`
	Commits  CommitSummary    `json:"commits" yaml:"commits"`
	Branches BranchSummary    `json:"branches" yaml:"branches"`
}

// ReconcilerDependencies enumerates collaborators required by the reconciler.
type ReconcilerDependencies struct {
	Runner GitRunner
}

// Reconciler merges commit count, file listing and porcelain status into one snapshot.
type Reconciler struct {
	runner GitRunner
}

// NewReconciler constructs a Reconciler.
func NewReconciler(dependencies ReconcilerDependencies) (*Reconciler, error) {
	if dependencies.Runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	return &Reconciler{runner: dependencies.Runner}, nil
}

// CommitCount returns the number of commits reachable from HEAD. A repository without
// commits reports an ambiguous HEAD, which counts as zero.
func (reconciler *Reconciler) CommitCount(executionContext context.Context, repositoryPath string) (int, error) {
	output, countError := reconciler.runner.Run(executionContext, gitcli.Invocation{
		Arguments:        []string{revListSubcommandConstant, headReferenceConstant, countFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if countError != nil {
		var commandError *gitcli.CommandError
		if errors.As(countError, &commandError) && strings.Contains(commandError.StandardError, ambiguousArgumentMarkerConstant) {
			return 0, nil
		}
		return 0, fmt.Errorf(commitCountErrorTemplateConstant, countError)
	}

	count, parseError := gitparse.ParseCount(output)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseTemplateConstant, strings.TrimSpace(output), parseError)
	}
	return count, nil
}

// Status builds the repository status. The queries run in sequence and the first failure
// ends the request.
func (reconciler *Reconciler) Status(executionContext context.Context, repositoryPath string) (RepositoryStatus, error) {
	total, countError := reconciler.CommitCount(executionContext, repositoryPath)
	if countError != nil {
		return RepositoryStatus{}, countError
	}

	listing, listingError := reconciler.runner.Run(executionContext, gitcli.Invocation{
		Arguments:        []string{lsFilesSubcommandConstant, cachedFlagConstant, othersFlagConstant, excludeStandardFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if listingError != nil {
		return RepositoryStatus{}, fmt.Errorf(fileListingErrorTemplateConstant, listingError)
	}

	porcelain, statusError := reconciler.runner.Run(executionContext, gitcli.Invocation{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant, branchFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if statusError != nil {
		return RepositoryStatus{}, fmt.Errorf(statusQueryErrorTemplateConstant, statusError)
	}

	repositoryStatus := RepositoryStatus{
		Files:   gitparse.ParseFileListing(listing),
		Commits: CommitSummary{Total: total},
	}
	repositoryStatus.merge(porcelain)
	return repositoryStatus, nil
}

func (repositoryStatus *RepositoryStatus) merge(porcelain string) {
	untrackedDirectories := []string{}
	for _, line := range strings.Split(porcelain, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if len(line) == 0 {
			continue
		}
		if gitparse.IsBranchHeader(line) {
			if header, matched := gitparse.ParseBranchHeader(line); matched {
				repositoryStatus.applyBranchHeader(header)
			}
			continue
		}

		statusLine, parsed := gitparse.ParseStatusLine(line)
		if !parsed {
			continue
		}
		repositoryStatus.Files.ApplyStatusLine(statusLine)
		if statusLine.IsUntrackedDirectory() {
			untrackedDirectories = append(untrackedDirectories, statusLine.Path)
		}
	}
	repositoryStatus.Files.MarkUntrackedDescendants(untrackedDirectories)
}

func (repositoryStatus *RepositoryStatus) applyBranchHeader(header gitparse.BranchHeader) {
	repositoryStatus.Branches.Local = header.Local
	repositoryStatus.Branches.Remote = header.Remote
	repositoryStatus.Commits.Ahead = header.Ahead
	repositoryStatus.Commits.Behind = header.Behind
	if header.Gone {
		repositoryStatus.Commits.Ahead = repositoryStatus.Commits.Total
		repositoryStatus.Branches.RemoteError = &RemoteError{Code: gitcli.ErrorKindRemoteGone}
	}
}
