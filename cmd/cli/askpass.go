package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitbridge/internal/credentials"
)

const askPassCommandShortConstant = "Answer a git or ssh credential prompt from the active channel"

// newAskPassCommand is invoked by the relay script that git and ssh run as their askpass
// program. It skips configuration loading so that stdout carries only the secret.
func (application *Application) newAskPassCommand() *cobra.Command {
	return &cobra.Command{
		Use:    credentials.RelaySubcommandName + " [prompt]",
		Short:  askPassCommandShortConstant,
		Hidden: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return credentials.RunRelay(command.Context(), strings.Join(arguments, " "), application.environmentLookup, command.OutOrStdout())
		},
	}
}
