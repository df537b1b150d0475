package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"artforge/pkg/config"
	"artforge/pkg/generate"
	"artforge/pkg/metadata"
)

// statsCommand creates the stats command, which tabulates trait frequencies
// of a finished build.
func (c *CLI) statsCommand() *cobra.Command {
	var buildDir string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-trait frequency statistics of a generated collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(buildDir)
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build", "b", config.DefaultBuildDir, "build directory of the collection")

	return cmd
}

func (c *CLI) runStats(buildDir string) error {
	m, err := generate.ReadManifest(buildDir)
	if err != nil {
		return err
	}

	counts, err := metadata.CountTraits(filepath.Join(buildDir, "json"), m.StartEdition, m.Amount)
	if err != nil {
		return err
	}
	percentages := metadata.Percentages(counts, m.Amount)

	printInfo("Collection of %d tokens (run %s)", m.Amount, m.RunID)
	fmt.Println(statsTable(counts, percentages))
	return nil
}

// statsRow is one line of the stats table.
type statsRow struct {
	key   metadata.TraitKey
	count int
	pct   float64
}

// sortedRows orders rows by trait type, then descending count, then value.
func sortedRows(counts metadata.Counts, percentages map[metadata.TraitKey]float64) []statsRow {
	rows := make([]statsRow, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, statsRow{key: key, count: count, pct: percentages[key]})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.key.TraitType != b.key.TraitType {
			return a.key.TraitType < b.key.TraitType
		}
		if a.count != b.count {
			return a.count > b.count
		}
		if a.key.Value != b.key.Value {
			return a.key.Value < b.key.Value
		}
		return a.key.SubValue < b.key.SubValue
	})
	return rows
}

// statsTable renders the frequency table.
func statsTable(counts metadata.Counts, percentages map[metadata.TraitKey]float64) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Trait", "Value", "Count", "Share"})

	for _, row := range sortedRows(counts, percentages) {
		value := row.key.Value
		if row.key.SubValue != "" {
			value = row.key.Value + "/" + row.key.SubValue
		}
		tw.AppendRow(table.Row{row.key.TraitType, value, row.count, fmt.Sprintf("%.2f%%", row.pct)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}
