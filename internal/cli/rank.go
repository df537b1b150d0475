package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"artforge/pkg/config"
	"artforge/pkg/errors"
	"artforge/pkg/generate"
	"artforge/pkg/metadata"
)

// rankCommand creates the rank command, which recomputes rarity ranks from
// enriched metadata of a finished build.
func (c *CLI) rankCommand() *cobra.Command {
	var buildDir string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Recompute harmonic-mean rarity ranks of a generated collection",
		Long: `Rank scores every token by the harmonic mean of its trait rarity
percentages and writes a rank back into each metadata document. The
collection must have been generated with rich_metadata enabled (or
enriched afterwards) so the percentages exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRank(buildDir)
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build", "b", config.DefaultBuildDir, "build directory of the collection")

	return cmd
}

func (c *CLI) runRank(buildDir string) error {
	m, err := generate.ReadManifest(buildDir)
	if err != nil {
		return err
	}

	err = metadata.Rank(filepath.Join(buildDir, "json"), m.StartEdition, m.Amount, c.Logger)
	if errors.Is(err, errors.ErrCodeMissingRichMetadata) {
		printWarning("%s", errors.UserMessage(err))
		return nil
	}
	if err != nil {
		return err
	}

	printSuccess("Ranked %d tokens", m.Amount)
	return nil
}
