package cli

import (
	"context"
	"fmt"

	"github.com/studiowebux/kwintel/internal/mock"
)

// Serve runs the stand-in extraction service until ctx is cancelled
func Serve(ctx context.Context, env Env, cfg *mock.Config) error {
	env = env.withDefaults()

	server := mock.NewServer(cfg, env.Logger)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "%s on %s\n", mock.Banner, server.Address())
	fmt.Fprintln(env.Stderr, "Press Ctrl+C to stop")

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	fmt.Fprintln(env.Stderr, "Server stopped")
	return nil
}
