package cmd_test

import (
	"context"
	"io"
	"testing"

	"waterline/internal/pkg/telemetry"
)

func telemetryForTest(t *testing.T) (*telemetry.Instruments, func(context.Context) error, error) {
	t.Helper()
	return telemetry.Init(t.Context(), telemetry.Settings{
		ServiceName:  "waterline-test",
		StdoutTraces: true,
		Output:       io.Discard,
	})
}
