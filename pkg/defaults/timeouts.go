package defaults

import "time"

// Invocation of the explored program.
const (
	// InvocationTimeout bounds a single help or version invocation.
	InvocationTimeout = 10 * time.Second

	// InvocationWaitDelay is how long a killed process may hold its pipes.
	InvocationWaitDelay = 2 * time.Second

	// MaxOutputBytes caps the captured stdout and stderr of one invocation,
	// per stream.
	MaxOutputBytes = 4 << 20
)

// Traversal limits.
const (
	MaxDepth = 5
	Budget   = 500
	Workers  = 4
)

// HTTP server.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Kubernetes.
const (
	// KubernetesAPITimeout bounds a single ConfigMap read or write.
	KubernetesAPITimeout = 30 * time.Second
)

// OCI registry.
const (
	// RegistryPushTimeout bounds pushing a packaged replica.
	RegistryPushTimeout = 5 * time.Minute
)
