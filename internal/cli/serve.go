package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"artforge/internal/preview"
	"artforge/pkg/config"
)

// serveCommand creates the serve command, a local preview server over the
// build directory.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		buildDir string
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated collection over HTTP for local preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), buildDir, addr)
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build", "b", config.DefaultBuildDir, "build directory of the collection")
	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:8645", "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, buildDir, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           preview.NewServer(buildDir, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shut down cleanly on Ctrl-C.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	c.Logger.Infof("Serving %s on http://%s", buildDir, addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
