package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/syssam/socialgraph/client/profile"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Profile is the public identity users act through: an artist, a group,
// an institution or a label.
type Profile struct {
	// ID of the profile.
	ID string `json:"id,omitempty"`
	// Type holds the value of the "type" field.
	Type profile.Type `json:"type,omitempty"`
	// Handle is the unique public name of the profile.
	Handle string `json:"handle,omitempty"`
	// DisplayName holds the value of the "display_name" field.
	DisplayName string  `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Location    *string `json:"location,omitempty"`
	// Links is nil when the column is NULL, and the JSON text "null" when
	// it holds a JSON null.
	Links       json.RawMessage `json:"links,omitempty"`
	Instruments []string        `json:"instruments,omitempty"`
	Verified    bool            `json:"verified,omitempty"`
	IsPrivate   bool            `json:"is_private,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`

	Edges  ProfileEdges   `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// ProfileEdges holds the relations/edges for the Profile entity.
type ProfileEdges struct {
	// ActiveForUsers holds the users acting as the profile.
	ActiveForUsers []*User `json:"active_for_users,omitempty"`
	// Members holds the value of the members edge.
	Members []*ProfileMember `json:"members,omitempty"`
	// Followers holds the follows pointing at the profile.
	Followers []*Follow `json:"followers,omitempty"`
	// Following holds the follows the profile made.
	Following []*Follow `json:"following,omitempty"`
	BlockedBy []*Block  `json:"blocked_by,omitempty"`
	Blocking  []*Block  `json:"blocking,omitempty"`
	MutedBy   []*Mute   `json:"muted_by,omitempty"`
	Muting    []*Mute   `json:"muting,omitempty"`

	loadedActiveForUsers bool
	loadedMembers        bool
	loadedFollowers      bool
	loadedFollowing      bool
	loadedBlockedBy      bool
	loadedBlocking       bool
	loadedMutedBy        bool
	loadedMuting         bool
}

// ActiveForUsersOrErr returns the ActiveForUsers value or an error if the
// edge was not loaded in eager-loading.
func (e ProfileEdges) ActiveForUsersOrErr() ([]*User, error) {
	return loaded(e.ActiveForUsers, e.loadedActiveForUsers, profile.EdgeActiveForUsers)
}

// MembersOrErr returns the Members value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) MembersOrErr() ([]*ProfileMember, error) {
	return loaded(e.Members, e.loadedMembers, profile.EdgeMembers)
}

// FollowersOrErr returns the Followers value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) FollowersOrErr() ([]*Follow, error) {
	return loaded(e.Followers, e.loadedFollowers, profile.EdgeFollowers)
}

// FollowingOrErr returns the Following value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) FollowingOrErr() ([]*Follow, error) {
	return loaded(e.Following, e.loadedFollowing, profile.EdgeFollowing)
}

// BlockedByOrErr returns the BlockedBy value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) BlockedByOrErr() ([]*Block, error) {
	return loaded(e.BlockedBy, e.loadedBlockedBy, profile.EdgeBlockedBy)
}

// BlockingOrErr returns the Blocking value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) BlockingOrErr() ([]*Block, error) {
	return loaded(e.Blocking, e.loadedBlocking, profile.EdgeBlocking)
}

// MutedByOrErr returns the MutedBy value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) MutedByOrErr() ([]*Mute, error) {
	return loaded(e.MutedBy, e.loadedMutedBy, profile.EdgeMutedBy)
}

// MutingOrErr returns the Muting value or an error if the edge
// was not loaded in eager-loading.
func (e ProfileEdges) MutingOrErr() ([]*Mute, error) {
	return loaded(e.Muting, e.loadedMuting, profile.EdgeMuting)
}

func decodeProfile(r *sqlgraph.Record) *Profile {
	p := &Profile{
		ID:          str(r, profile.FieldID),
		Type:        profile.Type(str(r, profile.FieldType)),
		Handle:      str(r, profile.FieldHandle),
		DisplayName: str(r, profile.FieldDisplayName),
		Bio:         strPtr(r, profile.FieldBio),
		AvatarURL:   strPtr(r, profile.FieldAvatarURL),
		Location:    strPtr(r, profile.FieldLocation),
		Links:       rawJSON(r, profile.FieldLinks),
		Instruments: strs(r, profile.FieldInstruments),
		Verified:    boolean(r, profile.FieldVerified),
		IsPrivate:   boolean(r, profile.FieldIsPrivate),
		CreatedAt:   timestamp(r, profile.FieldCreatedAt),
		UpdatedAt:   timestamp(r, profile.FieldUpdatedAt),
		Counts:      counts(r),
	}
	e := &p.Edges
	e.ActiveForUsers, e.loadedActiveForUsers = many(r, profile.EdgeActiveForUsers, decodeUser)
	e.Members, e.loadedMembers = many(r, profile.EdgeMembers, decodeProfileMember)
	e.Followers, e.loadedFollowers = many(r, profile.EdgeFollowers, decodeFollow)
	e.Following, e.loadedFollowing = many(r, profile.EdgeFollowing, decodeFollow)
	e.BlockedBy, e.loadedBlockedBy = many(r, profile.EdgeBlockedBy, decodeBlock)
	e.Blocking, e.loadedBlocking = many(r, profile.EdgeBlocking, decodeBlock)
	e.MutedBy, e.loadedMutedBy = many(r, profile.EdgeMutedBy, decodeMute)
	e.Muting, e.loadedMuting = many(r, profile.EdgeMuting, decodeMute)
	return p
}

// String implements the fmt.Stringer.
func (p *Profile) String() string {
	var builder strings.Builder
	builder.WriteString("Profile(")
	builder.WriteString(fmt.Sprintf("id=%v, ", p.ID))
	builder.WriteString(fmt.Sprintf("type=%v, ", p.Type))
	builder.WriteString("handle=")
	builder.WriteString(p.Handle)
	builder.WriteString(", display_name=")
	builder.WriteString(p.DisplayName)
	if v := p.Location; v != nil {
		builder.WriteString(", location=")
		builder.WriteString(*v)
	}
	builder.WriteString(fmt.Sprintf(", instruments=%v", p.Instruments))
	builder.WriteString(fmt.Sprintf(", verified=%v", p.Verified))
	builder.WriteString(fmt.Sprintf(", is_private=%v", p.IsPrivate))
	builder.WriteByte(')')
	return builder.String()
}

// ProfileCreateInput is the data of a new profile.
type ProfileCreateInput struct {
	ID          string
	Type        profile.Type
	Handle      string
	DisplayName string
	Bio         *string
	AvatarURL   *string
	Location    *string
	// Links takes any JSON-encodable value, json.RawMessage, or the
	// DbNull and JsonNull sentinels. nil leaves the column NULL.
	Links       any
	Instruments []string
	Verified    *bool
	IsPrivate   *bool

	Members   *Many[ProfileMemberCreateInput]
	Followers *Many[FollowCreateInput]
	Following *Many[FollowCreateInput]
	BlockedBy *Many[BlockCreateInput]
	Blocking  *Many[BlockCreateInput]
	MutedBy   *Many[MuteCreateInput]
	Muting    *Many[MuteCreateInput]
}

func (in ProfileCreateInput) createSpec() *sqlgraph.CreateSpec {
	instruments := in.Instruments
	if instruments == nil {
		instruments = []string{}
	}
	fields := map[string]any{
		profile.FieldType:        in.Type,
		profile.FieldHandle:      in.Handle,
		profile.FieldDisplayName: in.DisplayName,
		profile.FieldInstruments: instruments,
	}
	putKey(fields, profile.FieldID, in.ID)
	putPtr(fields, profile.FieldBio, in.Bio)
	putPtr(fields, profile.FieldAvatarURL, in.AvatarURL)
	putPtr(fields, profile.FieldLocation, in.Location)
	putJSON(fields, profile.FieldLinks, in.Links)
	putPtr(fields, profile.FieldVerified, in.Verified)
	putPtr(fields, profile.FieldIsPrivate, in.IsPrivate)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges: edges(
			in.Members.edge(profile.EdgeMembers),
			in.Followers.edge(profile.EdgeFollowers),
			in.Following.edge(profile.EdgeFollowing),
			in.BlockedBy.edge(profile.EdgeBlockedBy),
			in.Blocking.edge(profile.EdgeBlocking),
			in.MutedBy.edge(profile.EdgeMutedBy),
			in.Muting.edge(profile.EdgeMuting),
		),
	}
}

// ProfileUpdateInput holds the changes of a profile update.
type ProfileUpdateInput struct {
	Type        *profile.Type
	Handle      *string
	DisplayName *string
	Bio         Opt[string]
	AvatarURL   Opt[string]
	Location    Opt[string]
	// Links is left unchanged when nil. DbNull clears the column and
	// JsonNull stores a JSON null.
	Links       any
	Instruments []string
	Verified    *bool
	IsPrivate   *bool

	Members   *Many[ProfileMemberCreateInput]
	Followers *Many[FollowCreateInput]
	Following *Many[FollowCreateInput]
	BlockedBy *Many[BlockCreateInput]
	Blocking  *Many[BlockCreateInput]
	MutedBy   *Many[MuteCreateInput]
	Muting    *Many[MuteCreateInput]
}

func (in ProfileUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, profile.FieldType, in.Type)
	putPtr(fields, profile.FieldHandle, in.Handle)
	putPtr(fields, profile.FieldDisplayName, in.DisplayName)
	in.Bio.put(fields, profile.FieldBio)
	in.AvatarURL.put(fields, profile.FieldAvatarURL)
	in.Location.put(fields, profile.FieldLocation)
	putJSON(fields, profile.FieldLinks, in.Links)
	if in.Instruments != nil {
		fields[profile.FieldInstruments] = in.Instruments
	}
	putPtr(fields, profile.FieldVerified, in.Verified)
	putPtr(fields, profile.FieldIsPrivate, in.IsPrivate)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges: edges(
			in.Members.edge(profile.EdgeMembers),
			in.Followers.edge(profile.EdgeFollowers),
			in.Following.edge(profile.EdgeFollowing),
			in.BlockedBy.edge(profile.EdgeBlockedBy),
			in.Blocking.edge(profile.EdgeBlocking),
			in.MutedBy.edge(profile.EdgeMutedBy),
			in.Muting.edge(profile.EdgeMuting),
		),
	}
}

var profileKind = kind[Profile, ProfileCreateInput, ProfileUpdateInput]{name: profile.Model, decode: decodeProfile}

// ProfileClient is a client for the Profile schema.
type ProfileClient struct {
	*delegate[Profile, ProfileCreateInput, ProfileUpdateInput]
}

// QueryMembers queries the members edge of a Profile.
func (c *ProfileClient) QueryMembers(p *Profile) *Query[ProfileMember, []*ProfileMember] {
	return traverse(c.model, p.ID, profile.EdgeMembers, newDelegate(c.config, profileMemberKind).FindMany())
}

// QueryActiveForUsers queries the users acting as the Profile.
func (c *ProfileClient) QueryActiveForUsers(p *Profile) *Query[User, []*User] {
	return traverse(c.model, p.ID, profile.EdgeActiveForUsers, newDelegate(c.config, userKind).FindMany())
}

// QueryFollowers queries the follows pointing at the Profile.
func (c *ProfileClient) QueryFollowers(p *Profile) *Query[Follow, []*Follow] {
	return c.follows(p, profile.EdgeFollowers)
}

// QueryFollowing queries the follows the Profile made.
func (c *ProfileClient) QueryFollowing(p *Profile) *Query[Follow, []*Follow] {
	return c.follows(p, profile.EdgeFollowing)
}

// QueryBlockedBy queries the blocks pointing at the Profile.
func (c *ProfileClient) QueryBlockedBy(p *Profile) *Query[Block, []*Block] {
	return traverse(c.model, p.ID, profile.EdgeBlockedBy, newDelegate(c.config, blockKind).FindMany())
}

// QueryBlocking queries the blocks the Profile made.
func (c *ProfileClient) QueryBlocking(p *Profile) *Query[Block, []*Block] {
	return traverse(c.model, p.ID, profile.EdgeBlocking, newDelegate(c.config, blockKind).FindMany())
}

// QueryMutedBy queries the mutes pointing at the Profile.
func (c *ProfileClient) QueryMutedBy(p *Profile) *Query[Mute, []*Mute] {
	return traverse(c.model, p.ID, profile.EdgeMutedBy, newDelegate(c.config, muteKind).FindMany())
}

// QueryMuting queries the mutes the Profile made.
func (c *ProfileClient) QueryMuting(p *Profile) *Query[Mute, []*Mute] {
	return traverse(c.model, p.ID, profile.EdgeMuting, newDelegate(c.config, muteKind).FindMany())
}

func (c *ProfileClient) follows(p *Profile, edge string) *Query[Follow, []*Follow] {
	return traverse(c.model, p.ID, edge, newDelegate(c.config, followKind).FindMany())
}
