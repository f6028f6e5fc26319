// Package defaults provides centralized configuration constants for clint.
//
// This package defines timeout values and traversal limits used across the
// codebase, so that the CLI flags, the HTTP server and the library packages
// agree on the same values.
//
// # Timeout Categories
//
//   - Invocation timeouts: for running the explored program
//   - Server timeouts: for HTTP server configuration
//   - Kubernetes timeouts: for ConfigMap reads and writes
//   - Registry timeouts: for OCI pushes
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/clint/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Invocations: 10s, programs that wait for input are killed
//   - K8s operations: 30s for API calls
//   - Registry pushes: 5m, replicas are small but registries can be slow
//   - Server shutdown: 30s for graceful shutdown
package defaults
