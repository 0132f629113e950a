package main

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/islandrv/helpdesk/backend/internal/app"
	"github.com/islandrv/helpdesk/backend/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "helpdeskctl",
		Short:        "Operate the Island RV help desk from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("json", false, "Output in JSON format")

	root.AddCommand(newAskCmd(), newCatalogCmd(), newPolicyCmd())
	return root
}

// loadApp builds the same services the API server runs, from the environment.
// Logs go to stderr so stdout carries only command output.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Log.Apply()
	logrus.SetOutput(cmd.ErrOrStderr())
	return app.New(cmd.Context(), cfg)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Root().PersistentFlags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
