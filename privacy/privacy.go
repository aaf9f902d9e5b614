package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/querylanguage"
)

// Policy decision sentinel errors.
var (
	// Allow ends the evaluation and permits the operation.
	Allow = errors.New("socialgraph/privacy: allow rule")

	// Deny ends the evaluation and rejects the operation.
	Deny = errors.New("socialgraph/privacy: deny rule")

	// Skip continues the evaluation with the next rule.
	Skip = errors.New("socialgraph/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

// ContextQueryMutationRule creates a query/mutation rule from a context
// evaluation function. A nil result is a Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

type (
	// QueryRule decides whether a query is allowed, and may narrow it.
	QueryRule interface {
		EvalQuery(context.Context, socialgraph.Query) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule decides whether a mutation is allowed, and may narrow
	// or rewrite it.
	MutationRule interface {
		EvalMutation(context.Context, socialgraph.Mutation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule is an interface which groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc type is an adapter which allows the use of ordinary
// functions as query rules.
type QueryRuleFunc func(context.Context, socialgraph.Query) error

// EvalQuery returns f(ctx, q).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, q socialgraph.Query) error {
	return f(ctx, q)
}

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, socialgraph.Mutation) error

// EvalMutation returns f(ctx, m).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, m socialgraph.Mutation) error {
	return f(ctx, m)
}

// OnMutationOperation evaluates the given rule only on the given mutation
// operations.
func OnMutationOperation(rule MutationRule, op socialgraph.Op) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m socialgraph.Mutation) error {
		if m.Op().Is(op) {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying the mutation operations.
func DenyMutationOperationRule(op socialgraph.Op) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m socialgraph.Mutation) error {
		return Denyf("socialgraph/privacy: operation %s is not allowed", m.Op())
	})
	return OnMutationOperation(rule, op)
}

// AllowMutationOperationRule returns a rule allowing the mutation operations.
func AllowMutationOperationRule(op socialgraph.Op) MutationRule {
	rule := MutationRuleFunc(func(context.Context, socialgraph.Mutation) error {
		return Allow
	})
	return OnMutationOperation(rule, op)
}

// OnQueryOperation evaluates the given rule only on the named read
// operations, e.g. client.OpFindMany.
func OnQueryOperation(rule QueryRule, ops ...string) QueryRule {
	return QueryRuleFunc(func(ctx context.Context, q socialgraph.Query) error {
		for _, op := range ops {
			if q.Operation() == op {
				return rule.EvalQuery(ctx, q)
			}
		}
		return Skip
	})
}

// Policy groups query and mutation policies.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// EvalQuery evaluates the query policy. A decision attached to ctx with
// DecisionContext takes precedence.
func (p Policy) EvalQuery(ctx context.Context, q socialgraph.Query) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	return final(p.Query.EvalQuery(ctx, q))
}

// EvalMutation evaluates the mutation policy. A decision attached to ctx
// with DecisionContext takes precedence.
func (p Policy) EvalMutation(ctx context.Context, m socialgraph.Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	return final(p.Mutation.EvalMutation(ctx, m))
}

// final maps an Allow decision to nil.
func final(decision error) error {
	if errors.Is(decision, Allow) {
		return nil
	}
	return decision
}

// Hook returns a mutation hook enforcing the mutation policy.
func (p Policy) Hook() socialgraph.Hook {
	return func(next socialgraph.Mutator) socialgraph.Mutator {
		return socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
			if err := p.EvalMutation(ctx, m); err != nil {
				return nil, err
			}
			return next.Mutate(ctx, m)
		})
	}
}

// Interceptor returns a query interceptor enforcing the query policy.
func (p Policy) Interceptor() socialgraph.Interceptor {
	return socialgraph.InterceptFunc(func(next socialgraph.Querier) socialgraph.Querier {
		return socialgraph.QuerierFunc(func(ctx context.Context, q socialgraph.Query) (socialgraph.Value, error) {
			if err := p.EvalQuery(ctx, q); err != nil {
				return nil, err
			}
			return next.Query(ctx, q)
		})
	})
}

// EvalQuery evaluates a query against a query policy.
func (policies QueryPolicy) EvalQuery(ctx context.Context, q socialgraph.Query) error {
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, q); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates a mutation against a mutation policy.
func (policies MutationPolicy) EvalMutation(ctx context.Context, m socialgraph.Mutation) error {
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attached to it. Skip and nil leave the parent as is.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, socialgraph.Query) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, socialgraph.Mutation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ socialgraph.Query) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ socialgraph.Mutation) error {
	return c.eval(ctx)
}

// Filter is implemented by the queries and mutations of the client. Its
// predicates narrow the rows read, updated or deleted.
type Filter interface {
	WhereP(...querylanguage.P)
}

// FilterFunc is an adapter that allows using ordinary functions as
// query/mutation rules that narrow the operation:
//
//	privacy.FilterFunc(func(ctx context.Context, f privacy.Filter) error {
//		f.WhereP(profile.IsPrivate.EQ(false))
//		return privacy.Skip
//	})
type FilterFunc func(context.Context, Filter) error

// EvalQuery calls f(ctx, q) if the query supports filtering.
func (f FilterFunc) EvalQuery(ctx context.Context, q socialgraph.Query) error {
	fr, ok := q.(Filter)
	if !ok {
		return Denyf("socialgraph/privacy: query type %T does not support filtering", q)
	}
	return f(ctx, fr)
}

// EvalMutation calls f(ctx, m) if the mutation supports filtering.
func (f FilterFunc) EvalMutation(ctx context.Context, m socialgraph.Mutation) error {
	fr, ok := m.(Filter)
	if !ok {
		return Denyf("socialgraph/privacy: mutation type %T does not support filtering", m)
	}
	return f(ctx, fr)
}

var _ QueryMutationRule = FilterFunc(nil)
