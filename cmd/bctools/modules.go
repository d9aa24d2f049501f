package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
)

func newModulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ModulesUse,
		Short: messages.ModulesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr())
			in, err := loadInputs(opts)
			if err != nil {
				return err
			}
			if err := in.ValidateModules(); err != nil {
				return err
			}
			logParameters(logger, messages.ModulesUse, append(connectionParameters(in),
				parameter{"CompanyId", in.CompanyID},
				parameter{"ModuleId", in.ModuleID},
				parameter{"ExcludeMicrosoft", in.ExcludeMicrosoft.Bool()},
			))

			ctx := cmd.Context()
			client, err := connect(ctx, in, logger)
			if err != nil {
				return err
			}
			logging.Section(logger, messages.StepModules)
			modules, err := client.Extensions(ctx, in.CompanyID, bcapi.ExtensionFilter{
				ID:               in.ModuleID,
				ExcludeMicrosoft: in.ExcludeMicrosoft.Bool(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(modules) == 0 {
				fmt.Fprintln(out, messages.ListEmpty)
			} else {
				fmt.Fprintln(out, messages.ModulesTitle)
				for i, module := range modules {
					fmt.Fprintf(out, messages.ListEntryFmt+"\n", i+1, module.DisplayName, module.ID)
					logger.Debug(module.DisplayName, "publisher", module.Publisher, "version", module.Version(), "installed", module.IsInstalled)
				}
			}

			if in.ModuleID == "" {
				return nil
			}
			found, err := client.ConfirmExtension(ctx, in.CompanyID, in.ModuleID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf(messages.ModuleNotFoundFmt, errors.New(messages.ModuleNotFound), in.ModuleID)
			}
			return nil
		},
	}
}
