// Package mute holds the field and relation handles of the Mute model.
package mute

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "Mute"
	// Table holds the table name of the mute in the database.
	Table = "mutes"

	FieldID             = "id"
	FieldMuterProfileID = "muter_profile_id"
	FieldMutedProfileID = "muted_profile_id"
	FieldCreatedAt      = "created_at"

	EdgeMuter = "muter"
	EdgeMuted = "muted"
)

var (
	ID             = querylanguage.StringField(FieldID)
	MuterProfileID = querylanguage.StringField(FieldMuterProfileID)
	MutedProfileID = querylanguage.StringField(FieldMutedProfileID)
	CreatedAt      = querylanguage.TimeField(FieldCreatedAt)

	Muter = querylanguage.Relation(EdgeMuter)
	Muted = querylanguage.Relation(EdgeMuted)
)

// ByID returns the key of the mute with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByMuterProfileIDMutedProfileID returns the key of the mute of the pair.
func ByMuterProfileIDMutedProfileID(muter, muted string) querylanguage.Key {
	return querylanguage.Key{FieldMuterProfileID: muter, FieldMutedProfileID: muted}
}
