// Package mixin provides the common mixins shared by the domain models.
//
// Available mixins:
//   - ID: uuid string primary key generated on insert
//   - CreateTime: created_at timestamp
//   - UpdateTime: updated_at timestamp refreshed on every update
//   - Time: CreateTime and UpdateTime
//
// Timestamps are generated in UTC.
//
//	func (Profile) Mixin() []socialgraph.Mixin {
//	    return []socialgraph.Mixin{
//	        mixin.ID{},
//	        mixin.Time{},
//	    }
//	}
package mixin

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/mixin"
)

// Now returns the current time in UTC. It is the default of every
// timestamp added by this package.
func Now() time.Time {
	return time.Now().UTC()
}

// NewID returns a new random uuid in its canonical string form.
func NewID() string {
	return uuid.NewString()
}

// CreateTime adds created_at time field.
// The field is immutable and defaults to the insert time.
type CreateTime struct{ mixin.Schema }

// Fields of the create time mixin.
func (CreateTime) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.Time("created_at").
			Default(Now).
			Immutable(),
	}
}

// create time mixin must implement `Mixin` interface.
var _ socialgraph.Mixin = (*CreateTime)(nil)

// UpdateTime adds updated_at time field.
// The field updates automatically on every mutation.
type UpdateTime struct{ mixin.Schema }

// Fields of the update time mixin.
func (UpdateTime) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.Time("updated_at").
			Default(Now).
			UpdateDefault(Now),
	}
}

// update time mixin must implement `Mixin` interface.
var _ socialgraph.Mixin = (*UpdateTime)(nil)

// Time composes CreateTime and UpdateTime mixins.
type Time struct{ mixin.Schema }

// Fields of the time mixin.
func (Time) Fields() []socialgraph.Field {
	return append(
		CreateTime{}.Fields(),
		UpdateTime{}.Fields()...,
	)
}

// time mixin must implement `Mixin` interface.
var _ socialgraph.Mixin = (*Time)(nil)

// ID adds a uuid primary key stored as a string column. The value is
// generated by the client on insert when the caller does not supply one.
//
//	id VARCHAR(36) NOT NULL PRIMARY KEY
type ID struct{ mixin.Schema }

// Fields of the ID mixin.
func (ID) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("id").
			MaxLen(36).
			NotEmpty().
			DefaultFunc(NewID).
			Immutable(),
	}
}

// id mixin must implement `Mixin` interface.
var _ socialgraph.Mixin = (*ID)(nil)
