/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/clint/pkg/api"
	"github.com/NVIDIA/clint/pkg/server"
)

func serveCmd() *cli.Command {
	defaults := server.DefaultConfig()

	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve a command tree over HTTP",
		Description: `Loads a command tree and serves it read-only until interrupted.

# Endpoints

  GET /v1/tree                 the whole tree
  GET /v1/command?path=a b     a single command by path
  GET /v1/keywords             the keyword summary
  GET /health, /ready          probes
  GET /metrics                 Prometheus metrics

Responses are JSON unless ?format=yaml or an Accept header asks for YAML.

# Examples

  clint serve --tree out/kubectl/v1.31.0/parsed.json
  clint serve -i cm://tools/kubectl --port 9090`,
		Flags: []cli.Flag{
			treeFlag(true),
			&cli.StringFlag{
				Name:  "address",
				Value: defaults.Address,
				Usage: "Address to listen on (empty for all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   defaults.Port,
				Usage:   "Port to listen on",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:  "rate-limit",
				Value: int(defaults.RateLimit),
				Usage: "Maximum requests per second (0 for unlimited)",
			},
			&cli.IntFlag{
				Name:  "cache-max-age",
				Value: defaults.CacheMaxAge,
				Usage: "Cache-Control max-age of API responses, in seconds",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			port := int(cmd.Int("port"))
			if port <= 0 || port > 65535 {
				return fmt.Errorf("invalid --port value: %d", port)
			}

			cfg := server.DefaultConfig()
			cfg.Address = cmd.String("address")
			cfg.Port = port
			cfg.RateLimit = rate.Limit(cmd.Int("rate-limit"))
			cfg.RateLimitBurst = max(2*int(cmd.Int("rate-limit")), 1)
			cfg.CacheMaxAge = int(cmd.Int("cache-max-age"))

			return api.Serve(ctx, cmd.String("tree"), version, cfg)
		},
	}
}
