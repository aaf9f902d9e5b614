// Package privacy evaluates authorization policies before queries and
// mutations reach the database. A Policy installs as a mutation hook and a
// query interceptor on a client or on one model delegate:
//
//	p := privacy.Policy{
//		Mutation: privacy.MutationPolicy{
//			privacy.DenyIfNoViewer(),
//			privacy.AllowIfAdmin(),
//			privacy.IsOwner(session.FieldUserID),
//			privacy.AlwaysDenyRule(),
//		},
//		Query: privacy.QueryPolicy{
//			privacy.FilterOwned(session.FieldUserID),
//		},
//	}
//	client.Session.Use(p.Hook())
//	client.Session.Intercept(p.Interceptor())
//
// Rules are evaluated in order until one returns a final decision: Allow
// permits the operation, Deny or any other error rejects it and Skip moves
// on to the next rule. A policy whose rules all skip permits the
// operation, so policies usually end with AlwaysDenyRule.
//
// Filter rules narrow operations instead of deciding them: they add
// predicates to the query, or to the update or delete, and skip.
package privacy
