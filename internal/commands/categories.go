package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

type categoriesOutput struct {
	Categories []domain.Category `json:"categories"`
	Default    domain.Category   `json:"default"`
}

func addCategories(topLevel *cobra.Command) {
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the supported quote categories.",
		Example: `
quotectl categories
quotectl categories --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if oo.JSON {
				return oo.Print(out, categoriesOutput{
					Categories: domain.Categories(),
					Default:    domain.DefaultCategory,
				})
			}

			bold := color.New(color.Bold)

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("#"), bold.Sprint("Category"), "")
			for i, c := range domain.Categories() {
				marker := ""
				if c == domain.DefaultCategory {
					marker = "(default)"
				}
				tbl.AddRow(i+1, c, marker)
			}
			tbl.RightAlign(0)

			_, err := fmt.Fprintln(out, tbl)
			return err
		},
	}

	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
