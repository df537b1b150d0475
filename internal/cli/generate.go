package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"artforge/pkg/config"
	"artforge/pkg/generate"
)

// defaultConfigFile is the config path used when none is given.
const defaultConfigFile = "collection.toml"

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	seed    uint64 // random seed for reproducible runs
	seedSet bool   // whether --seed was given explicitly
	assets  string // override for the asset root
	output  string // override for the build output root
}

// generateCommand creates the generate command that produces the collection.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [config]",
		Short: "Generate the token collection described by a config file",
		Long: `Generate produces the full collection: for every edition it draws one
weighted-random trait per layer, rejects already-seen combinations,
composites the chosen layers into a PNG, and writes a JSON metadata
document. Optional rarity post-processing runs after the main loop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := defaultConfigFile
			if len(args) == 1 {
				configPath = args[0]
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			return c.runGenerate(cmd, configPath, &opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible run (default: time-based)")
	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset root directory (overrides config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "build output directory (overrides config)")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, configPath string, opts *generateOpts) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.assets != "" {
		cfg.AssetsDir = opts.assets
	}
	if opts.output != "" {
		cfg.BuildDir = opts.output
	}

	seed := resolveSeed(opts.seedSet, opts.seed)
	c.Logger.Infof("Generating %d tokens from %d layers (seed %d)", cfg.Amount, len(cfg.Layers), seed)

	// The spinner would interleave with debug output, so only show it on
	// quiet runs.
	var spin *spinner
	if c.Logger.GetLevel() > LogDebug {
		spin = newSpinner(fmt.Sprintf("generating %d tokens", cfg.Amount))
		spin.Start()
	}

	p := newProgress(c.Logger)
	result, err := generate.NewRunner(c.Logger, seed).Execute(cmd.Context(), cfg)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Generated %d tokens", result.Produced))

	printSuccess("Collection complete")
	printRunStats(result.Produced, result.Duplicates, result.Capacity)
	printFile(cfg.ImagesDir())
	printFile(cfg.JSONDir())
	printNewline()
	printKeyValue("run", result.RunID)
	printKeyValue("seed", fmt.Sprintf("%d", seed))
	printNextStep("Preview the collection", fmt.Sprintf("%s serve -b %s", appName, cfg.BuildDir))
	return nil
}

// resolveSeed returns the explicit seed when one was given, a time-derived
// seed otherwise.
func resolveSeed(explicit bool, seed uint64) uint64 {
	if explicit {
		return seed
	}
	return uint64(time.Now().UnixNano())
}
