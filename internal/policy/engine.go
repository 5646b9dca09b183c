// Package policy evaluates screen-access rules with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions produced by the screen access policy.
const (
	DecisionRender    = "render"
	DecisionLogin     = "login"
	DecisionHistory   = "history"
	DecisionDashboard = "dashboard"
)

// Input is the document the policy is evaluated against.
type Input struct {
	Authenticated bool   `json:"authenticated"`
	Capability    string `json:"capability"`
	Required      string `json:"required"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.screen_access.decision"),
		rego.Module("screen_access.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the decision for input.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"authenticated": input.Authenticated,
		"capability":    input.Capability,
		"required":      input.Required,
	}))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", fmt.Errorf("policy produced no decision")
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected decision type %T", results[0].Expressions[0].Value)
	}
	return s, nil
}

// DefaultPolicy is the screen access policy. Rules are checked in order.
const DefaultPolicy = `
package screen_access

import rego.v1

default decision := "login"

decision := "render" if {
	input.required == "none"
} else := "login" if {
	not input.authenticated
} else := "history" if {
	input.required == "admin"
	input.capability != "admin"
} else := "dashboard" if {
	input.required == "citizen"
	input.capability == "admin"
} else := "render" if {
	input.required in {"citizen", "admin"}
}
`
