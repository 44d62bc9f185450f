package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/gitparse"
	"github.com/temirov/gitbridge/internal/status"
)

const (
	commitsOperationConstant        = "commits"
	showOperationConstant           = "show"
	fileOperationConstant           = "file"
	diffOperationConstant           = "diff"
	branchStatusOperationConstant   = "branch status"
	showSubcommandConstant          = "show"
	logSubcommandConstant           = "log"
	limitFlagConstant               = "-n"
	diffSubcommandConstant          = "diff"
	cachedFlagConstant              = "--cached"
	doubleVerboseFlagConstant       = "-vv"
	noColorFlagConstant             = "--no-color"
	remoteBranchesFlagConstant      = "-r"
	verboseFlagConstant             = "-v"
	revListSubcommandConstant       = "rev-list"
	revParseSubcommandConstant      = "rev-parse"
	abbreviatedRefFlagConstant      = "--abbrev-ref"
	symbolicFullNameFlagConstant    = "--symbolic-full-name"
	upstreamReferenceConstant       = "@{u}"
	headReferenceConstant           = "HEAD"
	excludedReferencePrefixConstant = "^"
	countFlagConstant               = "--count"
	treeishPathSeparatorConstant    = ":"
	noUpstreamMarkerConstant        = "no upstream configured for branch"
	defaultCommitLimitConstant      = 20
	defaultTreeishConstant          = "HEAD"
	countParseErrorTemplateConstant = "unable to parse %s count: %w"
	aheadCountLabelConstant         = "ahead"
	behindCountLabelConstant        = "behind"
)

// DiffType selects which side of the index a diff compares against.
type DiffType string

// Supported diff types.
const (
	DiffTypeTree  DiffType = DiffType("tree")
	DiffTypeIndex DiffType = DiffType("index")
)

// CommitsOptions configures Commits. A zero Limit means twenty commits.
type CommitsOptions struct {
	RepositoryPath string `validate:"required"`
	Limit          int    `validate:"gte=0"`
	Before         string `validate:"omitempty,startsnotwith=-"`
}

// CommitPage is one page of history with the total number of commits on HEAD.
type CommitPage struct {
	Count   int               `json:"count" yaml:"count"`
	Commits []gitparse.Commit `json:"commits" yaml:"commits"`
	Before  string            `json:"before,omitempty" yaml:"before,omitempty"`
	Total   int               `json:"total" yaml:"total"`
}

// ShowOptions configures ShowCommit.
type ShowOptions struct {
	RepositoryPath string `validate:"required"`
	Sha            string `validate:"required,startsnotwith=-"`
}

// GetFileOptions configures GetFile. An empty Treeish reads HEAD.
type GetFileOptions struct {
	RepositoryPath string `validate:"required"`
	File           string `validate:"required"`
	Treeish        string `validate:"omitempty,startsnotwith=-"`
}

// DiffOptions configures GetFileDiff. An empty Type compares the working tree.
type DiffOptions struct {
	RepositoryPath string   `validate:"required"`
	File           string   `validate:"required"`
	Type           DiffType `validate:"omitempty,oneof=tree index"`
}

// BranchesOptions configures Branches.
type BranchesOptions struct {
	RepositoryPath string `validate:"required"`
	Remote         bool
}

// BranchStatusOptions configures BranchStatus.
type BranchStatusOptions struct {
	RepositoryPath string `validate:"required"`
	RemoteBranch   string `validate:"required,startsnotwith=-"`
}

// Status builds a fresh repository status snapshot.
func (service *Service) Status(executionContext context.Context, options RepositoryOptions) (status.RepositoryStatus, error) {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return status.RepositoryStatus{}, validationError
	}
	return service.reconciler.Status(executionContext, options.RepositoryPath)
}

// Files returns the file map of a fresh status snapshot.
func (service *Service) Files(executionContext context.Context, options RepositoryOptions) (gitparse.FileMap, error) {
	repositoryStatus, statusError := service.Status(executionContext, options)
	if statusError != nil {
		return nil, statusError
	}
	return repositoryStatus.Files, nil
}

// Commits returns a page of history starting at Before, or HEAD, along with the total count.
// The page and the count are queried concurrently.
func (service *Service) Commits(executionContext context.Context, options CommitsOptions) (CommitPage, error) {
	if validationError := service.validateOptions(commitsOperationConstant, options); validationError != nil {
		return CommitPage{}, validationError
	}

	limit := options.Limit
	if limit == 0 {
		limit = defaultCommitLimitConstant
	}
	arguments := []string{logSubcommandConstant, gitparse.LogFormat, limitFlagConstant, strconv.Itoa(limit)}
	if len(options.Before) > 0 {
		arguments = append(arguments, options.Before)
	}
	arguments = append(arguments, pathSeparatorFlagConstant)

	var total int
	var commits []gitparse.Commit
	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		count, countError := service.reconciler.CommitCount(groupContext, options.RepositoryPath)
		total = count
		return countError
	})
	group.Go(func() error {
		output, logError := service.run(groupContext, options.RepositoryPath, arguments...)
		if logError != nil {
			return logError
		}
		commits = gitparse.ParseLog(output)
		return nil
	})
	if waitError := group.Wait(); waitError != nil {
		return CommitPage{}, waitError
	}

	return CommitPage{Count: len(commits), Commits: commits, Before: options.Before, Total: total}, nil
}

// ShowCommit returns the raw `git show` output for Sha.
func (service *Service) ShowCommit(executionContext context.Context, options ShowOptions) (string, error) {
	if validationError := service.validateOptions(showOperationConstant, options); validationError != nil {
		return "", validationError
	}
	return service.run(executionContext, options.RepositoryPath, showSubcommandConstant, options.Sha)
}

// GetFile returns the content of File at Treeish.
func (service *Service) GetFile(executionContext context.Context, options GetFileOptions) (string, error) {
	if validationError := service.validateOptions(fileOperationConstant, options); validationError != nil {
		return "", validationError
	}
	treeish := options.Treeish
	if len(treeish) == 0 {
		treeish = defaultTreeishConstant
	}
	return service.run(executionContext, options.RepositoryPath, showSubcommandConstant, treeish+treeishPathSeparatorConstant+options.File)
}

// GetFileDiff returns the diff of File against the index (tree) or HEAD (index).
func (service *Service) GetFileDiff(executionContext context.Context, options DiffOptions) (string, error) {
	if validationError := service.validateOptions(diffOperationConstant, options); validationError != nil {
		return "", validationError
	}
	arguments := []string{diffSubcommandConstant}
	if options.Type == DiffTypeIndex {
		arguments = append(arguments, cachedFlagConstant)
	}
	arguments = append(arguments, pathSeparatorFlagConstant, options.File)
	return service.run(executionContext, options.RepositoryPath, arguments...)
}

// Remotes returns the configured remotes, or nil when there are none.
func (service *Service) Remotes(executionContext context.Context, options RepositoryOptions) (gitparse.RemoteMap, error) {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return nil, validationError
	}
	output, remoteError := service.run(executionContext, options.RepositoryPath, remoteSubcommandConstant, verboseFlagConstant)
	if remoteError != nil {
		return nil, remoteError
	}
	return gitparse.ParseRemotes(output), nil
}

// Branches lists local branches, or remote-tracking branches when Remote is set.
func (service *Service) Branches(executionContext context.Context, options BranchesOptions) ([]gitparse.Branch, error) {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return nil, validationError
	}
	arguments := []string{branchSubcommandConstant, doubleVerboseFlagConstant, noColorFlagConstant}
	if options.Remote {
		arguments = append(arguments, remoteBranchesFlagConstant)
	}
	output, branchError := service.run(executionContext, options.RepositoryPath, arguments...)
	if branchError != nil {
		return nil, branchError
	}
	return gitparse.ParseBranches(output), nil
}

// BranchStatus counts commits HEAD has that RemoteBranch lacks and the reverse.
func (service *Service) BranchStatus(executionContext context.Context, options BranchStatusOptions) (gitparse.Divergence, error) {
	if validationError := service.validateOptions(branchStatusOperationConstant, options); validationError != nil {
		return gitparse.Divergence{}, validationError
	}

	var divergence gitparse.Divergence
	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		count, countError := service.count(groupContext, options.RepositoryPath, aheadCountLabelConstant, headReferenceConstant, excludedReferencePrefixConstant+options.RemoteBranch)
		divergence.Ahead = count
		return countError
	})
	group.Go(func() error {
		count, countError := service.count(groupContext, options.RepositoryPath, behindCountLabelConstant, excludedReferencePrefixConstant+headReferenceConstant, options.RemoteBranch)
		divergence.Behind = count
		return countError
	})
	if waitError := group.Wait(); waitError != nil {
		return gitparse.Divergence{}, waitError
	}
	return divergence, nil
}

func (service *Service) count(executionContext context.Context, repositoryPath string, label string, references ...string) (int, error) {
	arguments := append([]string{revListSubcommandConstant}, references...)
	arguments = append(arguments, countFlagConstant)
	output, countError := service.run(executionContext, repositoryPath, arguments...)
	if countError != nil {
		return 0, countError
	}
	count, parseError := gitparse.ParseCount(output)
	if parseError != nil {
		return 0, fmt.Errorf(countParseErrorTemplateConstant, label, parseError)
	}
	return count, nil
}

// RemoteBranch returns the upstream of the current branch, or an empty string when none is configured.
func (service *Service) RemoteBranch(executionContext context.Context, options RepositoryOptions) (string, error) {
	if validationError := service.validateOptions(repositoryOperationConstant, options); validationError != nil {
		return "", validationError
	}
	output, revParseError := service.run(executionContext, options.RepositoryPath, revParseSubcommandConstant, abbreviatedRefFlagConstant, symbolicFullNameFlagConstant, upstreamReferenceConstant)
	if revParseError != nil {
		var commandError *gitcli.CommandError
		if errors.As(revParseError, &commandError) && strings.Contains(commandError.StandardError, noUpstreamMarkerConstant) {
			return "", nil
		}
		return "", revParseError
	}
	return strings.TrimSpace(output), nil
}
