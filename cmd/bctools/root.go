package main

import (
	"github.com/spf13/cobra"

	"github.com/bctools/bctools/internal/messages"
)

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	envFilePath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", messages.RootConfigFlag)
	cmd.PersistentFlags().StringVar(&opts.envFilePath, "env-file", "", messages.RootEnvFileFlag)

	cmd.AddCommand(
		newPublishCmd(opts),
		newCompaniesCmd(opts),
		newModulesCmd(opts),
		newDependenciesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(versionString() + "\n"))
			return err
		},
	}
}
