// Package cli implements the artforge command-line interface.
//
// This package provides commands for generating a token collection from
// layered trait assets, inspecting trait frequencies, ranking tokens by
// rarity, and previewing the build output over HTTP. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Produce the collection (images + metadata) from a config file
//   - stats: Show per-trait frequency statistics of a finished build
//   - rank: Recompute rarity ranks from enriched metadata
//   - serve: Preview the build directory over HTTP
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"artforge/pkg/buildinfo"
)

// appName is the application name used for display.
const appName = "artforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Artforge generates token collections from layered trait assets",
		Long:         `Artforge procedurally generates a collection of unique composite images from layered trait assets, using weighted-random trait selection with duplicate-combination avoidance, and emits per-token JSON metadata plus optional rarity statistics.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
