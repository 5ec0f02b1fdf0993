package testutils

import (
	"math"
	"reflect"
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v", exp, got)
	}
}

// AssertApprox compares float based values (including slices, arrays
// and structs of floats or [pr.Float]) with an absolute tolerance of 0.01.
func AssertApprox(t *testing.T, got, exp interface{}) {
	t.Helper()
	opt := cmp.Options{
		cmpopts.EquateApprox(0, 0.01),
		cmp.Comparer(func(a, b pr.Float) bool { return math.Abs(float64(a-b)) <= 0.01 }),
	}
	if diff := cmp.Diff(exp, got, opt); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}

// CapturedLogs stores the logs emitted while it is active.
type CapturedLogs struct {
	logs    *observer.ObservedLogs
	restore func()
}

// CaptureLogs redirects the package loggers until one of the
// Assert methods is called.
func CaptureLogs() *CapturedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Use(core)
	return &CapturedLogs{logs: logs, restore: restore}
}

// Logs stops the capture and returns the messages.
func (c *CapturedLogs) Logs() []string {
	c.restore()
	var out []string
	for _, entry := range c.logs.All() {
		if entry.Level >= zapcore.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}

// AssertNoLogs fails if any warning was emitted.
func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if l := c.Logs(); len(l) > 0 {
		t.Fatalf("expected no warnings, got %d: %v", len(l), l)
	}
}

// CheckEqual asserts the warnings have the expected count.
func (c *CapturedLogs) CheckEqual(t *testing.T, n int) []string {
	t.Helper()
	l := c.Logs()
	if len(l) != n {
		t.Fatalf("expected %d warnings, got %d: %v", n, len(l), l)
	}
	return l
}
