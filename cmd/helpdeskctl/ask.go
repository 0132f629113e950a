package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

func newAskCmd() *cobra.Command {
	var (
		unitType  string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message through the help desk and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Desk.Answer(cmd.Context(), helpdesk.Request{
				Message:   strings.Join(args, " "),
				UnitType:  unitType,
				SessionID: sessionID,
			})
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"reply":  resp.Reply,
					"source": string(resp.Source),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
			return err
		},
	}

	cmd.Flags().StringVar(&unitType, "unit", "", "Rental unit type (catalog id or name)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Existing session id to continue")
	return cmd
}
