package defaults

import (
	"testing"
	"time"
)

func TestTimeoutsArePositive(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
	}{
		{"InvocationTimeout", InvocationTimeout},
		{"InvocationWaitDelay", InvocationWaitDelay},
		{"ServerReadTimeout", ServerReadTimeout},
		{"ServerWriteTimeout", ServerWriteTimeout},
		{"ServerIdleTimeout", ServerIdleTimeout},
		{"ServerShutdownTimeout", ServerShutdownTimeout},
		{"KubernetesAPITimeout", KubernetesAPITimeout},
		{"RegistryPushTimeout", RegistryPushTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.d <= 0 {
				t.Errorf("%s = %v, want > 0", tt.name, tt.d)
			}
		})
	}
}

func TestWaitDelayShorterThanTimeout(t *testing.T) {
	if InvocationWaitDelay >= InvocationTimeout {
		t.Errorf("InvocationWaitDelay %v should be shorter than InvocationTimeout %v", InvocationWaitDelay, InvocationTimeout)
	}
}

func TestTraversalLimits(t *testing.T) {
	if MaxOutputBytes < 64<<10 {
		t.Errorf("MaxOutputBytes = %d, too small for large help pages", MaxOutputBytes)
	}
	if MaxDepth < 1 || Budget < 1 || Workers < 1 {
		t.Errorf("limits must be positive: depth=%d budget=%d workers=%d", MaxDepth, Budget, Workers)
	}
}
