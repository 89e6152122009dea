package commands

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func addVersion(topLevel *cobra.Command, info BuildInfo) {
	oo := &OutputOptions{}
	short := false

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the quotectl version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(out, info.Version)
				return err
			case oo.JSON:
				return oo.Print(out, info)
			}

			tbl := uitable.New()
			tbl.AddRow("Version:", info.Version)
			tbl.AddRow("Commit:", info.Commit)
			tbl.AddRow("Built:", info.BuildTime)
			_, err := fmt.Fprintln(out, tbl)
			return err
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print just the version number.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
