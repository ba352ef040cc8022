package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertRunFinished checks text log output for the completion line of the
// named descriptor.
func AssertRunFinished(t *testing.T, logOutput, name string) {
	t.Helper()

	run := fmt.Sprintf("run=%s", name)
	for _, line := range strings.Split(logOutput, "\n") {
		if strings.Contains(line, "Finished experiment") && strings.Contains(line, run) {
			return
		}
	}
	require.Fail(t, "run did not finish", "expected a completion log line for %s", name)
}
