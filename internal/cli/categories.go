package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/emission"
)

// NewCategoriesCmd creates the "categories" command listing the GHG Protocol
// categories and the methods each accepts.
func NewCategoriesCmd() *cobra.Command {
	var scope int

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List GHG Protocol categories and their methods",
		Example: `  carbonfocus categories
  carbonfocus categories --scope 3 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats := emission.Categories()
			if scope != 0 {
				filtered := cats[:0:0]
				for _, c := range cats {
					if c.Scope == scope {
						filtered = append(filtered, c)
					}
				}
				cats = filtered
			}
			if outputFormat() == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			return renderCategories(cmd.OutOrStdout(), cats)
		},
	}
	cmd.Flags().IntVar(&scope, "scope", 0, "only list categories of this scope (1, 2 or 3)")
	return cmd
}
