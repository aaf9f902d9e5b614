package privacy

import (
	"context"
	"fmt"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/querylanguage"
)

// Viewer is the authenticated user an operation runs for.
type Viewer struct {
	UserID string
	// ProfileID is the active profile of the user, if any.
	ProfileID string
	Admin     bool
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, v)
}

// ViewerFromContext returns the viewer of ctx, or nil.
func ViewerFromContext(ctx context.Context) *Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(*Viewer)
	return v
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present
// in the context.
func DenyIfNoViewer() QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("socialgraph/privacy: viewer required")
		}
		return Skip
	})
}

// AllowIfAdmin returns a rule that allows administrators.
func AllowIfAdmin() QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		if v := ViewerFromContext(ctx); v != nil && v.Admin {
			return Allow
		}
		return Skip
	})
}

// IsOwner returns a mutation rule allowing writes whose field, a user
// reference such as session.FieldUserID, holds the id of the viewer. Writes
// not setting the field are skipped, and so are writes setting it to
// another user.
func IsOwner(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m socialgraph.Mutation) error {
		v := ViewerFromContext(ctx)
		if v == nil {
			return Skip
		}
		value, ok := m.Field(field)
		if !ok {
			return Skip
		}
		if fmt.Sprint(value) == v.UserID {
			return Allow
		}
		return Skipf("socialgraph/privacy: %s is not owned by the viewer", field)
	})
}

// FilterOwned narrows reads, updates and deletes to the rows whose field
// holds the id of the viewer. It denies when there is no viewer.
func FilterOwned(field string) QueryMutationRule {
	return FilterFunc(func(ctx context.Context, f Filter) error {
		v := ViewerFromContext(ctx)
		if v == nil {
			return Denyf("socialgraph/privacy: viewer required for owner-filtered operation")
		}
		f.WhereP(querylanguage.FieldEQ(field, v.UserID))
		return Skip
	})
}

// HidePrivateProfiles narrows profile reads to public profiles and the
// active profile of the viewer.
func HidePrivateProfiles() QueryRule {
	return FilterFunc(func(ctx context.Context, f Filter) error {
		public := querylanguage.FieldEQ("is_private", false)
		if v := ViewerFromContext(ctx); v != nil && v.ProfileID != "" {
			f.WhereP(querylanguage.Or(public, querylanguage.FieldEQ("id", v.ProfileID)))
			return Skip
		}
		f.WhereP(public)
		return Skip
	})
}
