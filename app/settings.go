package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acctmgr/acctmgr/internal/settings"
)

func init() { //nolint: gochecknoinits
	settingsCatalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")

	settingsCmd.AddCommand(settingsCatalogCmd)
	rootCmd.AddCommand(settingsCmd)
}

var (
	catalogJSON bool

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Inspect settings",
	}

	settingsCatalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Print every setting with its group, type and default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeCatalog(cmd.OutOrStdout(), settings.Default(), catalogJSON)
		},
	}
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeCatalog(w io.Writer, c *settings.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(c.Groups())
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "GROUP\tCODE\tKEY\tTYPE\tDEFAULT")

	for _, g := range c.Groups() {
		for _, d := range g.Definitions {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", g.Key, d.Code, d.Key, d.Type, d.Default.Encode())
		}
	}

	return tw.Flush()
}
