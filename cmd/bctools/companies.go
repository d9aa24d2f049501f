package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
)

func newCompaniesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.CompaniesUse,
		Short: messages.CompaniesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr())
			in, err := loadInputs(opts)
			if err != nil {
				return err
			}
			if err := in.ValidateConnection(); err != nil {
				return err
			}
			logParameters(logger, messages.CompaniesUse, connectionParameters(in))

			client, err := connect(cmd.Context(), in, logger)
			if err != nil {
				return err
			}
			logging.Section(logger, messages.StepCompanies)
			companies, err := client.Companies(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(companies) == 0 {
				fmt.Fprintln(out, messages.ListEmpty)
				return nil
			}
			fmt.Fprintln(out, messages.CompaniesTitle)
			for i, company := range companies {
				fmt.Fprintf(out, messages.ListEntryFmt+"\n", i+1, company.Name, company.ID)
			}
			return nil
		},
	}
}
