package learning_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
)

const denyPromotional = `package consolidate

deny contains msg if {
	contains(lower(input.insight), "sponsored")
	msg := "promotional content"
}

deny contains msg if {
	input.topic == "blocked-topic"
	msg := "topic is blocked"
}
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "consolidate.rego"), []byte(content), 0600))
	return dir
}

func TestPolicyDeniesMatchingInsight(t *testing.T) {
	ctx := t.Context()
	policy, err := learning.LoadPolicy(ctx, writePolicy(t, denyPromotional))
	gt.NoError(t, err)
	gt.V(t, policy).NotNil()

	gt.False(t, policy.Allow(ctx, "rust", "Sponsored: try our new IDE today"))
	gt.False(t, policy.Allow(ctx, "blocked-topic", "anything at all"))
	gt.True(t, policy.Allow(ctx, "rust", "Rust 1.80 stabilizes LazyCell"))
}

func TestLoadPolicyEmptyDir(t *testing.T) {
	policy, err := learning.LoadPolicy(t.Context(), t.TempDir())
	gt.NoError(t, err)
	gt.True(t, policy == nil)
}

func TestLoadPolicyInvalidRego(t *testing.T) {
	dir := writePolicy(t, "package consolidate\n\ndeny contains if {")
	_, err := learning.LoadPolicy(t.Context(), dir)
	gt.Error(t, err)
}

func TestNilPolicyAllowsEverything(t *testing.T) {
	var policy *learning.Policy
	gt.True(t, policy.Allow(t.Context(), "any", "any insight"))
}
