package classifier

import (
	"context"
	"log/slog"

	"corocheck/internal/core/errors"
	"corocheck/internal/engine/collector"
	"corocheck/internal/engine/environment"
	"corocheck/internal/engine/event"
	"corocheck/internal/engine/scope"
)

// Site is a resolved call expression as seen by the tiers.
type Site struct {
	// Callee is the dotted form of the called expression.
	Callee string
	// Target is the callee qualified against the enclosing scopes, with the
	// self.X rescoping rule applied.
	Target string
	// Candidates lists the signature keys the callee may refer to,
	// innermost scope first.
	Candidates []string
}

// Attempt is one classification strategy. ok reports whether it reached a
// verdict; a non-nil error is a fault that aborts the run.
type Attempt func(ctx context.Context, site Site) (coroutine, ok bool, err error)

type Tier struct {
	Name    event.Tier
	Attempt Attempt
}

// LiveTier evaluates the callee itself in env.
func LiveTier(env environment.Environment) Attempt {
	return func(ctx context.Context, site Site) (bool, bool, error) {
		return evaluate(ctx, env, site.Callee)
	}
}

// DeclaredTypeTier looks the target up in types, dropping trailing segments
// until a prefix is found, and evaluates the declared type. Only the first
// prefix found is tried.
func DeclaredTypeTier(env environment.Environment, types collector.TypeMap) Attempt {
	return func(ctx context.Context, site Site) (bool, bool, error) {
		for name, more := site.Target, true; more; name, more = scope.Parent(name) {
			if typ, ok := types.Lookup(name); ok {
				slog.Debug("declared type", "callee", site.Callee, "key", name, "type", typ)
				return evaluate(ctx, env, typ)
			}
		}
		return false, false, nil
	}
}

// SignatureTier reports a coroutine when any candidate key is a recorded
// coroutine definition.
func SignatureTier(signatures collector.SignatureSet) Attempt {
	return func(_ context.Context, site Site) (bool, bool, error) {
		for _, name := range site.Candidates {
			if signatures.Contains(name) {
				return true, true, nil
			}
		}
		return false, false, nil
	}
}

func evaluate(ctx context.Context, env environment.Environment, expr string) (bool, bool, error) {
	coroutine, err := env.Evaluate(ctx, expr)
	if err == nil {
		return coroutine, true, nil
	}
	if errors.IsRecoverable(err) {
		return false, false, nil
	}
	return false, false, err
}

// DefaultTiers returns the standard chain: live evaluation, declared type,
// signature membership.
func DefaultTiers(env environment.Environment, result *collector.Result) []Tier {
	return []Tier{
		{Name: event.TierLive, Attempt: LiveTier(env)},
		{Name: event.TierDeclaredType, Attempt: DeclaredTypeTier(env, result.Types)},
		{Name: event.TierSignature, Attempt: SignatureTier(result.Signatures)},
	}
}

// Classify runs tiers in order. The first tier reaching a verdict wins;
// when none does the call is not a coroutine.
func Classify(ctx context.Context, tiers []Tier, site Site) (bool, event.Tier, error) {
	for _, tier := range tiers {
		coroutine, ok, err := tier.Attempt(ctx, site)
		if err != nil {
			err = errors.AddContext(err, errors.CtxSymbol, site.Callee)
			return false, tier.Name, errors.AddContext(err, errors.CtxOperation, string(tier.Name))
		}
		if ok {
			return coroutine, tier.Name, nil
		}
	}
	return false, event.TierDefault, nil
}
