package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/daemon"
	"github.com/acctmgr/acctmgr/internal/db/controller/activationcode"
)

// ErrUnknownCodeType is returned for a --type that names no activation type.
var ErrUnknownCodeType = errors.New("unknown activation code type")

func init() { //nolint: gochecknoinits
	codesGenerateCmd.Flags().StringVar(&codeType, "type", "month", "Code type: day, month, year, permanent or 0-3")
	codesGenerateCmd.Flags().IntVar(&codeCount, "count", 1, "Number of codes to mint")

	codesCmd.AddCommand(codesGenerateCmd, codesStatsCmd)
	rootCmd.AddCommand(codesCmd)
}

var (
	codeType  string
	codeCount int

	codesCmd = &cobra.Command{
		Use:   "codes",
		Short: "Manage activation codes",
	}

	codesGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Mint unused activation codes and print them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := parseCodeType(codeType)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := daemon.OpenDB(cfg)
			if err != nil {
				return err
			}

			codes, err := daemon.NewActivationService(cfg, db)
			if err != nil {
				return err
			}

			res, err := codes.GenerateBatch(cmd.Context(), []activation.BatchItem{{Type: t, Count: codeCount}})
			if err != nil {
				return err
			}

			return writeBatch(cmd.OutOrStdout(), res)
		},
	}

	codesStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print code counts by type and status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := daemon.OpenDB(cfg)
			if err != nil {
				return err
			}

			counts, err := activationcode.New(db).CountByStatus(cmd.Context())
			if err != nil {
				return err
			}

			return writeStats(cmd.OutOrStdout(), counts)
		},
	}
)

// parseCodeType accepts a type name or its numeric code.
func parseCodeType(s string) (activation.Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, t := range activation.Types() {
		if t.String() == s {
			return t, nil
		}
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !activation.Type(n).Valid() {
		return 0, errors.Wrapf(ErrUnknownCodeType, "%q", s)
	}

	return activation.Type(n), nil
}

func writeBatch(w io.Writer, res *activation.BatchResult) error {
	for _, g := range res.Results {
		for _, c := range g.Codes {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", g.TypeName, c); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeStats(w io.Writer, counts map[activation.Type]map[activation.Status]int64) error {
	tw := newTabWriter(w)

	header := []string{"TYPE"}
	for _, s := range activation.Statuses() {
		header = append(header, strings.ToUpper(s.String()))
	}

	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, t := range activation.Types() {
		row := []string{t.String()}
		for _, s := range activation.Statuses() {
			row = append(row, strconv.FormatInt(counts[t][s], 10))
		}

		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}
