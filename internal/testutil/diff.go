// Package testutil holds shared test helpers.
package testutil

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// RequireTextEqual fails the test with a unified diff when got differs from
// want. Plain equality output is unreadable for multi-line renders.
func RequireTextEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	t.Fatalf("rendered output mismatch:\n%s", diff)
}
