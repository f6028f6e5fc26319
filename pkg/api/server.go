// Package api serves a persisted command tree over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/serializer"
	"github.com/NVIDIA/clint/pkg/server"
)

const name = "clint-api"

// Serve loads the tree at source (a file or cm:// URI) and serves it until
// ctx is done or the process is signalled.
func Serve(ctx context.Context, source, version string, cfg *server.Config) error {
	tree, err := serializer.FromFile[model.CommandNode](source)
	if err != nil {
		return fmt.Errorf("failed to load command tree: %w", err)
	}
	if cfg == nil {
		cfg = server.DefaultConfig()
	}

	slog.Info("serving command tree",
		slog.String("source", source),
		slog.String("program", tree.Name),
		slog.Int("commands", tree.Count()))

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithConfig(cfg),
		server.WithHandler(NewTreeHandler(tree, cfg.CacheMaxAge).Routes()),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
