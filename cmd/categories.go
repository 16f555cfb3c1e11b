package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ikjoobang/xivix-best-map/internal/category"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List analyzable business categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := category.NewRegistry()
		if cfg.Analysis.CategoryFile != "" {
			if err := reg.LoadFile(cfg.Analysis.CategoryFile); err != nil {
				return eris.Wrap(err, "load category file")
			}
		}

		return printCategories(cmd.OutOrStdout(), reg)
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func printCategories(w io.Writer, reg *category.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tDISPLAY\tALIASES")
	for _, c := range reg.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Display, strings.Join(c.Aliases, ", "))
	}
	return tw.Flush()
}
