package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the audit database and report how many runs it holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.recorder == nil {
			return errors.New("audit trail is disabled (set audit.enabled: true)")
		}

		n, err := a.recorder.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗂  Connected to %s audit table %s: %d runs recorded\n",
			a.cfg.Audit.Driver, a.cfg.Audit.Table, n)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(auditCmd)
}
