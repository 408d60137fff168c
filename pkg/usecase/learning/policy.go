package learning

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Policy gates CONSOLIDATE through user-supplied Rego rules. The policy
// package is `consolidate` and denial is expressed as a set of reasons:
//
//	package consolidate
//	deny contains msg if {
//	    contains(lower(input.insight), "sponsored")
//	    msg := "promotional content"
//	}
//
// An insight is stored unless the deny set is non-empty.
type Policy struct {
	query *rego.PreparedEvalQuery
}

// LoadPolicy prepares all .rego files under dir. Returns nil when the
// directory holds no policy files, which callers treat as allow-everything.
func LoadPolicy(ctx context.Context, dir string) (*Policy, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", dir))
	}
	if len(files) == 0 {
		return nil, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.consolidate.deny"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare consolidate policy")
	}

	return &Policy{query: &prepared}, nil
}

// Allow evaluates the deny set for one candidate insight. Evaluation errors
// fail open with a warning: a broken policy should not silently halt learning.
func (p *Policy) Allow(ctx context.Context, topic, insight string) bool {
	if p == nil || p.query == nil {
		return true
	}

	input := map[string]any{
		"topic":   topic,
		"insight": insight,
	}

	results, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		logging.From(ctx).Warn("consolidate policy evaluation failed", "error", err)
		return true
	}

	for _, result := range results {
		for _, expr := range result.Expressions {
			if reasons, ok := expr.Value.([]any); ok && len(reasons) > 0 {
				logging.From(ctx).Info("insight denied by policy",
					"topic", topic, "insight", insight, "reasons", reasons)
				return false
			}
		}
	}
	return true
}
