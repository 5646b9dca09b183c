// Package guard decides whether a session may view a screen.
package guard

import (
	"context"
	"log"

	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/policy"
)

// Decision is the outcome of a navigation check.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Render allows the requested screen.
var Render = Decision{Allowed: true}

// RedirectTo denies the screen and names where to go instead.
func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

// Guard gates screens on {session presence, role, required capability}.
type Guard struct {
	engine *policy.Engine
}

// New creates a guard over a policy engine.
func New(engine *policy.Engine) *Guard {
	return &Guard{engine: engine}
}

// Check decides whether sess may render a screen that requires capability.
// Evaluation failures deny access and send the browser to the login screen.
func (g *Guard) Check(ctx context.Context, sess domain.Session, requires domain.Capability) Decision {
	input := policy.Input{
		Authenticated: !sess.IsEmpty(),
		Required:      string(requires),
	}
	if input.Authenticated {
		input.Capability = string(sess.Role.Capability())
	}

	decision, err := g.engine.Evaluate(ctx, input)
	if err != nil {
		log.Printf("ERROR: access policy evaluation failed: %v", err)
		return RedirectTo(domain.PathLogin)
	}

	switch decision {
	case policy.DecisionRender:
		return Render
	case policy.DecisionLogin:
		return RedirectTo(domain.PathLogin)
	case policy.DecisionHistory:
		return RedirectTo(domain.PathHistory)
	case policy.DecisionDashboard:
		return RedirectTo(domain.PathDashboard)
	default:
		log.Printf("WARN: unknown access decision %q", decision)
		return RedirectTo(domain.PathLogin)
	}
}
