// Package graph builds the immutable model registry from schema definitions.
//
// The registry resolves every model's table, columns, primary key, unique
// keys and relations once at startup. The query, mutation and DDL layers only
// read from it.
//
//	g, err := graph.New(User{}, Profile{}, Follow{})
//	if err != nil {
//	    return err
//	}
//	m := g.MustModel("Follow")
//	m.Table                      // "follows"
//	m.UniqueKeys()               // [[id] [follower_profile_id following_profile_id]]
//
// # Naming
//
// Tables default to the pluralized snake_case model name ("VerificationToken"
// is stored in "verification_tokens"). Constraint names follow the storage
// conventions used by the DDL generator and the error classifier:
//
//   - primary key: <table>_pkey
//   - unique key:  <table>_<columns>_key
//   - index:       <table>_<columns>_idx
//   - foreign key: <table>_<column>_fkey
//
// A model without an id field uses its first unique index as primary key.
//
// # Relations
//
// Each association (edge.To) must be referenced by exactly one back-reference
// (edge.From) that binds the foreign-key field. The pair shares the field and
// the delete action, which defaults to RESTRICT for required keys and
// SET NULL for optional ones.
package graph
