package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relieftools/reliefmap/internal/variant"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the registered map variants",
	Long:  `List every registered map variant with its default render mode and forest settings.`,
	RunE:  runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(cmd *cobra.Command, args []string) error {
	for _, v := range variant.All() {
		forest := "no"
		if v.Forest != nil {
			forest = fmt.Sprintf("%d patches", v.Forest.Patches)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-7s forest: %-11s %s\n",
			v.Name, v.Render, forest, v.Description)
	}
	return nil
}
