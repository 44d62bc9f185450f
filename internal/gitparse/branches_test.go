package gitparse_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbridge/internal/gitparse"
)

func TestParseBranchesLocal(testInstance *testing.T) {
	output := "* main       1a2b3c4 [origin/main: ahead 2, behind 1] Add parser\n" +
		"  feature/x  5d6e7f8 [origin/feature/x: behind 3] Work in progress\n" +
		"  scratch    9a8b7c6 Local only\n" +
		"  tracked    0f0f0f0 [origin/tracked] In sync\n"

	branches := gitparse.ParseBranches(output)

	require.Equal(testInstance, []gitparse.Branch{
		{
			Name:    "main",
			Remote:  "origin/main",
			Status:  gitparse.Divergence{Ahead: 2, Behind: 1},
			Commit:  gitparse.BranchCommit{Sha: "1a2b3c4", Subject: "Add parser"},
			Current: true,
		},
		{
			Name:   "feature/x",
			Remote: "origin/feature/x",
			Status: gitparse.Divergence{Behind: 3},
			Commit: gitparse.BranchCommit{Sha: "5d6e7f8", Subject: "Work in progress"},
		},
		{
			Name:   "scratch",
			Commit: gitparse.BranchCommit{Sha: "9a8b7c6", Subject: "Local only"},
		},
		{
			Name:   "tracked",
			Remote: "origin/tracked",
			Commit: gitparse.BranchCommit{Sha: "0f0f0f0", Subject: "In sync"},
		},
	}, branches)
}

func TestParseBranchesRemoteDropsSymbolicRefs(testInstance *testing.T) {
	output := "  origin/HEAD -> origin/main\n  origin/main 1a2b3c4 Add parser\n"

	branches := gitparse.ParseBranches(output)

	require.Len(testInstance, branches, 1)
	require.Equal(testInstance, "origin/main", branches[0].Name)
	require.False(testInstance, branches[0].Current)
}

func TestParseBranchesDropsDetachedHead(testInstance *testing.T) {
	testCases := []struct {
		name   string
		output string
	}{
		{name: "detached_at", output: "* (HEAD detached at 1a2b3c4) 1a2b3c4 Add parser\n  main 1a2b3c4 Add parser\n"},
		{name: "detached_from", output: "* (HEAD detached from 9f8e7d6) 1a2b3c4 Add parser\n  main 1a2b3c4 Add parser\n"},
		{name: "rebasing", output: "* (no branch, rebasing main) 1a2b3c4 Add parser\n  main 1a2b3c4 Add parser\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			branches := gitparse.ParseBranches(testCase.output)
			require.Equal(subTest, []gitparse.Branch{
				{Name: "main", Commit: gitparse.BranchCommit{Sha: "1a2b3c4", Subject: "Add parser"}},
			}, branches)
		})
	}
}

func TestParseCount(testInstance *testing.T) {
	count, parseError := gitparse.ParseCount("42\n")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, 42, count)

	_, parseError = gitparse.ParseCount("")
	require.Error(testInstance, parseError)
}
