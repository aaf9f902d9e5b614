package client

import (
	"time"

	"github.com/syssam/socialgraph/client/follow"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Follow is a directed follow relationship between two profiles. A
// profile may follow itself.
type Follow struct {
	ID                 string    `json:"id,omitempty"`
	FollowerProfileID  string    `json:"follower_profile_id,omitempty"`
	FollowingProfileID string    `json:"following_profile_id,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitempty"`

	Edges  FollowEdges    `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// FollowEdges holds the relations/edges for the Follow entity.
type FollowEdges struct {
	// FollowerProfile made the follow.
	FollowerProfile *Profile `json:"follower_profile,omitempty"`
	// FollowingProfile is followed.
	FollowingProfile *Profile `json:"following_profile,omitempty"`

	loadedFollowerProfile  bool
	loadedFollowingProfile bool
}

// FollowerProfileOrErr returns the FollowerProfile value or an error if
// the edge was not loaded in eager-loading.
func (e FollowEdges) FollowerProfileOrErr() (*Profile, error) {
	return loaded(e.FollowerProfile, e.loadedFollowerProfile, follow.EdgeFollowerProfile)
}

// FollowingProfileOrErr returns the FollowingProfile value or an error if
// the edge was not loaded in eager-loading.
func (e FollowEdges) FollowingProfileOrErr() (*Profile, error) {
	return loaded(e.FollowingProfile, e.loadedFollowingProfile, follow.EdgeFollowingProfile)
}

func decodeFollow(r *sqlgraph.Record) *Follow {
	f := &Follow{
		ID:                 str(r, follow.FieldID),
		FollowerProfileID:  str(r, follow.FieldFollowerProfileID),
		FollowingProfileID: str(r, follow.FieldFollowingProfileID),
		CreatedAt:          timestamp(r, follow.FieldCreatedAt),
		Counts:             counts(r),
	}
	f.Edges.FollowerProfile, f.Edges.loadedFollowerProfile = one(r, follow.EdgeFollowerProfile, decodeProfile)
	f.Edges.FollowingProfile, f.Edges.loadedFollowingProfile = one(r, follow.EdgeFollowingProfile, decodeProfile)
	return f
}

// FollowCreateInput is the data of a new follow.
type FollowCreateInput struct {
	ID                 string
	FollowerProfileID  string
	FollowerProfile    *One[ProfileCreateInput]
	FollowingProfileID string
	FollowingProfile   *One[ProfileCreateInput]
}

func (in FollowCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := make(map[string]any)
	putKey(fields, follow.FieldID, in.ID)
	putKey(fields, follow.FieldFollowerProfileID, in.FollowerProfileID)
	putKey(fields, follow.FieldFollowingProfileID, in.FollowingProfileID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges: edges(
			in.FollowerProfile.edge(follow.EdgeFollowerProfile),
			in.FollowingProfile.edge(follow.EdgeFollowingProfile),
		),
	}
}

// FollowUpdateInput holds the changes of a follow update.
type FollowUpdateInput struct {
	FollowerProfileID  *string
	FollowerProfile    *One[ProfileCreateInput]
	FollowingProfileID *string
	FollowingProfile   *One[ProfileCreateInput]
}

func (in FollowUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, follow.FieldFollowerProfileID, in.FollowerProfileID)
	putPtr(fields, follow.FieldFollowingProfileID, in.FollowingProfileID)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges: edges(
			in.FollowerProfile.edge(follow.EdgeFollowerProfile),
			in.FollowingProfile.edge(follow.EdgeFollowingProfile),
		),
	}
}

var followKind = kind[Follow, FollowCreateInput, FollowUpdateInput]{name: follow.Model, decode: decodeFollow}

// FollowClient is a client for the Follow schema.
type FollowClient struct {
	*delegate[Follow, FollowCreateInput, FollowUpdateInput]
}

// QueryFollowerProfile queries the profile that made the Follow.
func (c *FollowClient) QueryFollowerProfile(f *Follow) *Query[Profile, []*Profile] {
	return traverse(c.model, f.ID, follow.EdgeFollowerProfile, newDelegate(c.config, profileKind).FindMany())
}

// QueryFollowingProfile queries the followed profile of the Follow.
func (c *FollowClient) QueryFollowingProfile(f *Follow) *Query[Profile, []*Profile] {
	return traverse(c.model, f.ID, follow.EdgeFollowingProfile, newDelegate(c.config, profileKind).FindMany())
}
