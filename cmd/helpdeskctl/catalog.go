package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [category]",
		Short: "List catalog categories or show one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				category, ok := a.Desk.Catalog().Find(args[0])
				if !ok {
					return fmt.Errorf("category %q not found", args[0])
				}
				if jsonOutput(cmd) {
					return writeJSON(out, category)
				}
				printCategory(cmd, category)
				return nil
			}

			categories := a.Desk.Catalog().Categories()
			if jsonOutput(cmd) {
				if categories == nil {
					categories = []catalog.Category{}
				}
				return writeJSON(out, categories)
			}
			if len(categories) == 0 {
				fmt.Fprintln(out, "No catalog loaded. Set CATALOG_FILE to a catalog JSON document.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADD-ONS\tDELIVERY OPTIONS")
			fmt.Fprintln(w, "--\t----\t-------\t----------------")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.ID, c.Name, len(c.AddOns), len(c.DeliveryOptions))
			}
			return w.Flush()
		},
	}
}

func printCategory(cmd *cobra.Command, c catalog.Category) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)

	if len(c.IncludedItems) > 0 {
		fmt.Fprintf(out, "\nIncluded:\n  - %s\n", strings.Join(c.IncludedItems, "\n  - "))
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if len(c.AddOns) > 0 {
		fmt.Fprintln(w, "\nAdd-ons:")
		for _, item := range c.AddOns {
			fmt.Fprintf(w, "  %s\t%s\n", item.Name, item.Price)
		}
	}
	if len(c.DeliveryOptions) > 0 {
		fmt.Fprintln(w, "\nDelivery:")
		for _, item := range c.DeliveryOptions {
			fmt.Fprintf(w, "  %s\t%s\n", item.Name, item.Price)
		}
	}
	if len(c.BookingRules) > 0 {
		fmt.Fprintln(w, "\nBooking rules:")
		for _, rule := range c.BookingRules {
			fmt.Fprintf(w, "  %s\t%s\n", rule.Rule, rule.Fee)
		}
	}
	w.Flush()
}
