package client

import (
	"time"

	"github.com/syssam/socialgraph/client/mute"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Mute hides the content of one profile from another.
type Mute struct {
	ID             string    `json:"id,omitempty"`
	MuterProfileID string    `json:"muter_profile_id,omitempty"`
	MutedProfileID string    `json:"muted_profile_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`

	Edges  MuteEdges      `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// MuteEdges holds the relations/edges for the Mute entity.
type MuteEdges struct {
	Muter *Profile `json:"muter,omitempty"`
	Muted *Profile `json:"muted,omitempty"`

	loadedMuter bool
	loadedMuted bool
}

// MuterOrErr returns the Muter value or an error if the edge
// was not loaded in eager-loading.
func (e MuteEdges) MuterOrErr() (*Profile, error) {
	return loaded(e.Muter, e.loadedMuter, mute.EdgeMuter)
}

// MutedOrErr returns the Muted value or an error if the edge
// was not loaded in eager-loading.
func (e MuteEdges) MutedOrErr() (*Profile, error) {
	return loaded(e.Muted, e.loadedMuted, mute.EdgeMuted)
}

func decodeMute(r *sqlgraph.Record) *Mute {
	m := &Mute{
		ID:             str(r, mute.FieldID),
		MuterProfileID: str(r, mute.FieldMuterProfileID),
		MutedProfileID: str(r, mute.FieldMutedProfileID),
		CreatedAt:      timestamp(r, mute.FieldCreatedAt),
		Counts:         counts(r),
	}
	m.Edges.Muter, m.Edges.loadedMuter = one(r, mute.EdgeMuter, decodeProfile)
	m.Edges.Muted, m.Edges.loadedMuted = one(r, mute.EdgeMuted, decodeProfile)
	return m
}

// MuteCreateInput is the data of a new mute.
type MuteCreateInput struct {
	ID             string
	MuterProfileID string
	Muter          *One[ProfileCreateInput]
	MutedProfileID string
	Muted          *One[ProfileCreateInput]
}

func (in MuteCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := make(map[string]any)
	putKey(fields, mute.FieldID, in.ID)
	putKey(fields, mute.FieldMuterProfileID, in.MuterProfileID)
	putKey(fields, mute.FieldMutedProfileID, in.MutedProfileID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges:  edges(in.Muter.edge(mute.EdgeMuter), in.Muted.edge(mute.EdgeMuted)),
	}
}

// MuteUpdateInput holds the changes of a mute update.
type MuteUpdateInput struct {
	MuterProfileID *string
	Muter          *One[ProfileCreateInput]
	MutedProfileID *string
	Muted          *One[ProfileCreateInput]
}

func (in MuteUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, mute.FieldMuterProfileID, in.MuterProfileID)
	putPtr(fields, mute.FieldMutedProfileID, in.MutedProfileID)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges:  edges(in.Muter.edge(mute.EdgeMuter), in.Muted.edge(mute.EdgeMuted)),
	}
}

var muteKind = kind[Mute, MuteCreateInput, MuteUpdateInput]{name: mute.Model, decode: decodeMute}

// MuteClient is a client for the Mute schema.
type MuteClient struct {
	*delegate[Mute, MuteCreateInput, MuteUpdateInput]
}

// QueryMuter queries the muter edge of a Mute.
func (c *MuteClient) QueryMuter(m *Mute) *Query[Profile, []*Profile] {
	return traverse(c.model, m.ID, mute.EdgeMuter, newDelegate(c.config, profileKind).FindMany())
}

// QueryMuted queries the muted edge of a Mute.
func (c *MuteClient) QueryMuted(m *Mute) *Query[Profile, []*Profile] {
	return traverse(c.model, m.ID, mute.EdgeMuted, newDelegate(c.config, profileKind).FindMany())
}
