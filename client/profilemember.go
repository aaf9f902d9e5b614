package client

import (
	"time"

	"github.com/syssam/socialgraph/client/profilemember"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// ProfileMember grants a user a role on a profile.
type ProfileMember struct {
	ID        string             `json:"id,omitempty"`
	UserID    string             `json:"user_id,omitempty"`
	ProfileID string             `json:"profile_id,omitempty"`
	Role      profilemember.Role `json:"role,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty"`

	Edges  ProfileMemberEdges `json:"edges"`
	Counts map[string]int     `json:"_count,omitempty"`
}

// ProfileMemberEdges holds the relations/edges for the ProfileMember
// entity.
type ProfileMemberEdges struct {
	User    *User    `json:"user,omitempty"`
	Profile *Profile `json:"profile,omitempty"`

	loadedUser    bool
	loadedProfile bool
}

// UserOrErr returns the User value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileMemberEdges) UserOrErr() (*User, error) {
	return loaded(e.User, e.loadedUser, profilemember.EdgeUser)
}

// ProfileOrErr returns the Profile value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileMemberEdges) ProfileOrErr() (*Profile, error) {
	return loaded(e.Profile, e.loadedProfile, profilemember.EdgeProfile)
}

func decodeProfileMember(r *sqlgraph.Record) *ProfileMember {
	m := &ProfileMember{
		ID:        str(r, profilemember.FieldID),
		UserID:    str(r, profilemember.FieldUserID),
		ProfileID: str(r, profilemember.FieldProfileID),
		Role:      profilemember.Role(str(r, profilemember.FieldRole)),
		CreatedAt: timestamp(r, profilemember.FieldCreatedAt),
		Counts:    counts(r),
	}
	m.Edges.User, m.Edges.loadedUser = one(r, profilemember.EdgeUser, decodeUser)
	m.Edges.Profile, m.Edges.loadedProfile = one(r, profilemember.EdgeProfile, decodeProfile)
	return m
}

// ProfileMemberCreateInput is the data of a new membership. Each of the
// user and the profile is set either by its id or by its relation.
type ProfileMemberCreateInput struct {
	ID        string
	UserID    string
	User      *One[UserCreateInput]
	ProfileID string
	Profile   *One[ProfileCreateInput]
	Role      profilemember.Role
}

func (in ProfileMemberCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := map[string]any{profilemember.FieldRole: in.Role}
	putKey(fields, profilemember.FieldID, in.ID)
	putKey(fields, profilemember.FieldUserID, in.UserID)
	putKey(fields, profilemember.FieldProfileID, in.ProfileID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges: edges(
			in.User.edge(profilemember.EdgeUser),
			in.Profile.edge(profilemember.EdgeProfile),
		),
	}
}

// ProfileMemberUpdateInput holds the changes of a membership update.
type ProfileMemberUpdateInput struct {
	UserID    *string
	User      *One[UserCreateInput]
	ProfileID *string
	Profile   *One[ProfileCreateInput]
	Role      *profilemember.Role
}

func (in ProfileMemberUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, profilemember.FieldUserID, in.UserID)
	putPtr(fields, profilemember.FieldProfileID, in.ProfileID)
	putPtr(fields, profilemember.FieldRole, in.Role)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges: edges(
			in.User.edge(profilemember.EdgeUser),
			in.Profile.edge(profilemember.EdgeProfile),
		),
	}
}

var profileMemberKind = kind[ProfileMember, ProfileMemberCreateInput, ProfileMemberUpdateInput]{
	name:   profilemember.Model,
	decode: decodeProfileMember,
}

// ProfileMemberClient is a client for the ProfileMember schema.
type ProfileMemberClient struct {
	*delegate[ProfileMember, ProfileMemberCreateInput, ProfileMemberUpdateInput]
}

// QueryUser queries the user edge of a ProfileMember.
func (c *ProfileMemberClient) QueryUser(m *ProfileMember) *Query[User, []*User] {
	return traverse(c.model, m.ID, profilemember.EdgeUser, newDelegate(c.config, userKind).FindMany())
}

// QueryProfile queries the profile edge of a ProfileMember.
func (c *ProfileMemberClient) QueryProfile(m *ProfileMember) *Query[Profile, []*Profile] {
	return traverse(c.model, m.ID, profilemember.EdgeProfile, newDelegate(c.config, profileKind).FindMany())
}
