package cmd

import (
	"fmt"
	"sort"
	"strings"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/ui"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the active catalog snapshot",
	Long: `Prints every mod in the latest catalog snapshot with its stability
classification and status flags. Useful for a quick look at the catalog
without opening the snapshot file.`,
	Run: func(cmd *cobra.Command, _ []string) {
		status, _ := cmd.Flags().GetString("status")
		runList(status)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("status", "", "Only show mods carrying this status flag (e.g. unlisted, removed)")
}

func runList(statusFilter string) {
	_, cat := bootstrap(".")

	mods := make([]*catalog.Mod, 0, len(cat.Mods))
	for _, m := range cat.Mods {
		if statusFilter != "" && !m.HasStatus(catalog.Status(statusFilter)) {
			continue
		}
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool {
		return strings.ToLower(mods[i].Name) < strings.ToLower(mods[j].Name)
	})

	fmt.Printf("Catalog version %d (%s), %d mods\n\n", cat.Version, cat.GameVersion, len(mods))
	for _, m := range mods {
		line := fmt.Sprintf("%-12d %-50s %s", m.ID.Numeric(), truncateName(m.Name, 50), m.Stability)
		if len(m.Statuses) > 0 {
			flags := make([]string, len(m.Statuses))
			for i, s := range m.Statuses {
				flags[i] = string(s)
			}
			line += "  [" + strings.Join(flags, ", ") + "]"
		}
		fmt.Println(ui.Colorize(line, m.Stability))
	}
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
