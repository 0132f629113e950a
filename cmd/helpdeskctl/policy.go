package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/islandrv/helpdesk/backend/internal/model/policy"
)

func newPolicyCmd() *cobra.Command {
	var validate string

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective policy, or validate a policy file",
		Long: `Prints the policy the help desk enforces (defaults merged with POLICY_FILE).

With --validate the given file is loaded and checked without starting anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if validate != "" {
				if _, err := policy.Load(validate); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: ok\n", validate)
				return nil
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p := a.Desk.Policy()
			if jsonOutput(cmd) {
				return writeJSON(out, p)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&validate, "validate", "", "Policy YAML file to validate")
	return cmd
}
