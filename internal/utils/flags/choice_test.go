package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "json",
			choices:        []string{"json", "yaml"},
			description:    "Result encoding.",
			expectedOutput: "`<JSON|yaml>` Result encoding.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "index",
			choices:        []string{"tree", "index"},
			description:    "Diff side.",
			expectedOutput: "`<tree|INDEX>` Diff side.",
		},
		{
			name:           "NoDefault",
			defaultChoice:  "",
			choices:        []string{"structured", "console"},
			description:    "",
			expectedOutput: "`<structured|console>`",
		},
		{
			name:           "DuplicatesAndWhitespaceDropped",
			defaultChoice:  " Warn ",
			choices:        []string{" warn ", "WARN", "", "error"},
			description:    "Log level.",
			expectedOutput: "`<WARN|error>` Log level.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestChoiceSet(t *testing.T) {
	choice := NewChoice("json", "json", "yaml")
	require.Equal(t, "json", choice.String())
	require.Equal(t, "choice", choice.Type())

	require.NoError(t, choice.Set(" YAML "))
	require.Equal(t, "yaml", choice.String())

	setError := choice.Set("xml")
	require.EqualError(t, setError, `invalid value "xml", expected one of json, yaml`)
	require.Equal(t, "yaml", choice.String())
}

func TestChoiceBindsToFlagSet(t *testing.T) {
	choice := NewChoice("tree", "tree", "index")
	flagSet := pflag.NewFlagSet("diff", pflag.ContinueOnError)
	flagSet.Var(choice, "type", choice.Usage("Diff side."))

	require.NoError(t, flagSet.Parse([]string{"--type", "index"}))
	require.Equal(t, "index", choice.String())
	require.Error(t, flagSet.Parse([]string{"--type", "head"}))
}
