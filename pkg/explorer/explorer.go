// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package explorer builds the command tree of a program by recursively
// invoking its help output.
//
// Every node is identified by its command path. A claim table records each
// path the first time it is reached, so the same subcommand listed twice
// is explored once. A subcommand named like a command on its own path is
// kept as a childless terminal reference and never invoked, so a program
// that lists an ancestor cannot make the traversal loop. Siblings
// are explored concurrently; a semaphore bounds the number of target
// processes running at once.
//
// Failures while exploring a single node never abort the traversal. They
// are recorded as warnings on the node and exploration continues with the
// remaining nodes. Explore only returns an error when the program itself
// cannot be run or the context is cancelled.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/NVIDIA/clint/pkg/defaults"
	"github.com/NVIDIA/clint/pkg/errors"
	"github.com/NVIDIA/clint/pkg/invoker"
	"github.com/NVIDIA/clint/pkg/model"
)

const (
	// DefaultMaxDepth is the deepest command level that is explored.
	DefaultMaxDepth = defaults.MaxDepth

	// DefaultBudget caps the number of target invocations per run.
	DefaultBudget = defaults.Budget

	// DefaultWorkers bounds concurrent target invocations.
	DefaultWorkers = defaults.Workers
)

// DefaultExclude lists subcommands that are never explored. Shell
// completion commands print scripts rather than help.
var DefaultExclude = []string{"completion", "__complete*"}

// resolver is implemented by invokers that can verify a program exists
// before the traversal starts.
type resolver interface {
	Resolve(path string) (string, error)
}

// Explorer discovers command trees.
type Explorer struct {
	invoker      invoker.Invoker
	maxDepth     int
	budget       int
	workers      int
	exclude      []string
	versionProbe bool
	version      string
}

// Option is a functional option for configuring Explorer instances.
type Option func(*Explorer)

// WithInvoker sets the invoker used to run the target.
func WithInvoker(inv invoker.Invoker) Option {
	return func(e *Explorer) {
		if inv != nil {
			e.invoker = inv
		}
	}
}

// WithMaxDepth sets the deepest explored level. The root is depth 0.
func WithMaxDepth(depth int) Option {
	return func(e *Explorer) {
		if depth >= 0 {
			e.maxDepth = depth
		}
	}
}

// WithBudget caps the total number of target invocations.
func WithBudget(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.budget = n
		}
	}
}

// WithWorkers sets how many invocations may run concurrently.
func WithWorkers(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithExclude replaces the subcommand exclusion patterns. Patterns support
// "prefix*", "*suffix" and "*contains*" wildcards.
func WithExclude(patterns ...string) Option {
	return func(e *Explorer) {
		e.exclude = patterns
	}
}

// WithVersionProbe enables or disables asking the program for its version.
func WithVersionProbe(enabled bool) Option {
	return func(e *Explorer) {
		e.versionProbe = enabled
	}
}

// WithVersion sets the explorer version reported in logs.
func WithVersion(version string) Option {
	return func(e *Explorer) {
		e.version = version
	}
}

// New creates an Explorer with the given options.
func New(opts ...Option) *Explorer {
	e := &Explorer{
		invoker:      invoker.New(),
		maxDepth:     DefaultMaxDepth,
		budget:       DefaultBudget,
		workers:      DefaultWorkers,
		exclude:      DefaultExclude,
		versionProbe: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explore builds the command tree of the program at path. args are
// prepended to every invocation, after the program itself.
func (e *Explorer) Explore(ctx context.Context, path string, args []string) (*model.CommandNode, error) {
	if r, ok := e.invoker.(resolver); ok {
		resolved, err := r.Resolve(path)
		if err != nil {
			exploreTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		path = resolved
	}

	start := time.Now()
	defer func() {
		exploreDuration.Observe(time.Since(start).Seconds())
	}()

	root := model.NewRootNode(filepath.Base(path))
	slog.Debug("starting exploration",
		slog.String("program", path),
		slog.String("version", e.version),
		slog.Int("max_depth", e.maxDepth),
		slog.Int("budget", e.budget),
		slog.Int("workers", e.workers))

	g, gctx := errgroup.WithContext(ctx)
	t := &traversal{
		e:       e,
		ctx:     gctx,
		g:       g,
		program: path,
		argv:    args,
		sem:     semaphore.NewWeighted(int64(e.workers)),
		claimed: map[string]bool{root.CommandPath: true},
	}

	g.Go(func() error {
		root.Version = model.UnknownVersion
		if e.versionProbe {
			if err := t.probeVersion(root); err != nil {
				return err
			}
		}
		return t.explore(root, "")
	})

	if err := g.Wait(); err != nil {
		exploreTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "exploration cancelled", ctx.Err())
		}
		return nil, fmt.Errorf("failed to explore %s: %w", path, err)
	}

	root.Normalize()
	exploreTotal.WithLabelValues("success").Inc()
	exploreNodes.Set(float64(root.Count()))

	slog.Debug("exploration complete",
		slog.String("program", root.Name),
		slog.Int("nodes", root.Count()),
		slog.Int64("invocations", t.spent.Load()),
		slog.Duration("duration", time.Since(start)))

	return root, nil
}

// traversal is the state of a single Explore call.
type traversal struct {
	e       *Explorer
	ctx     context.Context
	g       *errgroup.Group
	program string
	argv    []string
	sem     *semaphore.Weighted
	spent   atomic.Int64

	mu      sync.Mutex
	claimed map[string]bool
}

// claim marks path as visited. It reports false when the path was
// already claimed by another node.
func (t *traversal) claim(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.claimed[path] {
		return false
	}
	t.claimed[path] = true
	return true
}

// take reserves one invocation from the budget.
func (t *traversal) take() bool {
	return t.spent.Add(1) <= int64(t.e.budget)
}

// invoke runs the target with the concurrency limit applied.
func (t *traversal) invoke(args []string) (*invoker.Result, error) {
	if err := t.sem.Acquire(t.ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)
	return t.e.invoker.Invoke(t.ctx, t.program, args)
}
