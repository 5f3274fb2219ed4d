package cli

import (
	"strings"
	"testing"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	for _, cmd := range []string{"generate", "validate", "init"} {
		_, err := execute(t, cmd, "--unknown-flag")
		if err == nil {
			t.Fatalf("%s: expected error for unknown flag", cmd)
		}
		if _, ok := err.(usageError); !ok {
			t.Fatalf("%s: expected usage error, got %T: %v", cmd, err, err)
		}
		if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
			t.Fatalf("%s: unexpected error text: %v", cmd, err)
		}
	}
}
