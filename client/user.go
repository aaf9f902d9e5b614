package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/syssam/socialgraph/client/user"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// User is the model entity for the User schema.
type User struct {
	// ID of the user.
	ID string `json:"id,omitempty"`
	// Email holds the value of the "email" field.
	Email string `json:"email,omitempty"`
	// PasswordHash holds the value of the "password_hash" field.
	PasswordHash *string `json:"-"`
	// ActiveProfileID holds the value of the "active_profile_id" field.
	ActiveProfileID *string `json:"active_profile_id,omitempty"`
	// CreatedAt holds the value of the "created_at" field.
	CreatedAt time.Time `json:"created_at,omitempty"`
	// UpdatedAt holds the value of the "updated_at" field.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	// Edges holds the relations/edges of the User.
	Edges UserEdges `json:"edges"`
	// Counts holds the loaded relation counts.
	Counts map[string]int `json:"_count,omitempty"`
}

// UserEdges holds the relations/edges for the User entity.
type UserEdges struct {
	// Memberships holds the value of the memberships edge.
	Memberships []*ProfileMember `json:"memberships,omitempty"`
	// Accounts holds the value of the accounts edge.
	Accounts []*Account `json:"accounts,omitempty"`
	// Sessions holds the value of the sessions edge.
	Sessions []*Session `json:"sessions,omitempty"`
	// ActiveProfile holds the value of the active_profile edge.
	ActiveProfile *Profile `json:"active_profile,omitempty"`

	loadedMemberships   bool
	loadedAccounts      bool
	loadedSessions      bool
	loadedActiveProfile bool
}

// MembershipsOrErr returns the Memberships value or an error if the edge
// was not loaded in eager-loading.
func (e UserEdges) MembershipsOrErr() ([]*ProfileMember, error) {
	return loaded(e.Memberships, e.loadedMemberships, user.EdgeMemberships)
}

// AccountsOrErr returns the Accounts value or an error if the edge
// was not loaded in eager-loading.
func (e UserEdges) AccountsOrErr() ([]*Account, error) {
	return loaded(e.Accounts, e.loadedAccounts, user.EdgeAccounts)
}

// SessionsOrErr returns the Sessions value or an error if the edge
// was not loaded in eager-loading.
func (e UserEdges) SessionsOrErr() ([]*Session, error) {
	return loaded(e.Sessions, e.loadedSessions, user.EdgeSessions)
}

// ActiveProfileOrErr returns the ActiveProfile value or an error if the
// edge was not loaded. A loaded edge without a profile returns nil.
func (e UserEdges) ActiveProfileOrErr() (*Profile, error) {
	return loaded(e.ActiveProfile, e.loadedActiveProfile, user.EdgeActiveProfile)
}

func decodeUser(r *sqlgraph.Record) *User {
	u := &User{
		ID:              str(r, user.FieldID),
		Email:           str(r, user.FieldEmail),
		PasswordHash:    strPtr(r, user.FieldPasswordHash),
		ActiveProfileID: strPtr(r, user.FieldActiveProfileID),
		CreatedAt:       timestamp(r, user.FieldCreatedAt),
		UpdatedAt:       timestamp(r, user.FieldUpdatedAt),
		Counts:          counts(r),
	}
	u.Edges.Memberships, u.Edges.loadedMemberships = many(r, user.EdgeMemberships, decodeProfileMember)
	u.Edges.Accounts, u.Edges.loadedAccounts = many(r, user.EdgeAccounts, decodeAccount)
	u.Edges.Sessions, u.Edges.loadedSessions = many(r, user.EdgeSessions, decodeSession)
	u.Edges.ActiveProfile, u.Edges.loadedActiveProfile = one(r, user.EdgeActiveProfile, decodeProfile)
	return u
}

// String implements the fmt.Stringer.
func (u *User) String() string {
	var builder strings.Builder
	builder.WriteString("User(")
	builder.WriteString(fmt.Sprintf("id=%v, ", u.ID))
	builder.WriteString("email=")
	builder.WriteString(u.Email)
	builder.WriteString(", ")
	builder.WriteString("password_hash=<sensitive>")
	builder.WriteString(", ")
	if v := u.ActiveProfileID; v != nil {
		builder.WriteString("active_profile_id=")
		builder.WriteString(*v)
		builder.WriteString(", ")
	}
	builder.WriteString("created_at=")
	builder.WriteString(u.CreatedAt.Format(time.ANSIC))
	builder.WriteString(", ")
	builder.WriteString("updated_at=")
	builder.WriteString(u.UpdatedAt.Format(time.ANSIC))
	builder.WriteByte(')')
	return builder.String()
}

// UserCreateInput is the data of a new user.
type UserCreateInput struct {
	// ID is generated when empty.
	ID           string
	Email        string
	PasswordHash *string
	// ActiveProfileID and ActiveProfile are exclusive.
	ActiveProfileID string
	ActiveProfile   *One[ProfileCreateInput]
	Memberships     *Many[ProfileMemberCreateInput]
	Accounts        *Many[AccountCreateInput]
	Sessions        *Many[SessionCreateInput]
}

func (in UserCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := map[string]any{user.FieldEmail: in.Email}
	putKey(fields, user.FieldID, in.ID)
	putPtr(fields, user.FieldPasswordHash, in.PasswordHash)
	putKey(fields, user.FieldActiveProfileID, in.ActiveProfileID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges: edges(
			in.ActiveProfile.edge(user.EdgeActiveProfile),
			in.Memberships.edge(user.EdgeMemberships),
			in.Accounts.edge(user.EdgeAccounts),
			in.Sessions.edge(user.EdgeSessions),
		),
	}
}

// UserUpdateInput holds the changes of a user update. Unset fields are
// left unchanged.
type UserUpdateInput struct {
	Email        *string
	PasswordHash Opt[string]
	// ActiveProfileID and ActiveProfile are exclusive. Disconnect clears
	// the active profile.
	ActiveProfileID Opt[string]
	ActiveProfile   *One[ProfileCreateInput]
	Memberships     *Many[ProfileMemberCreateInput]
	Accounts        *Many[AccountCreateInput]
	Sessions        *Many[SessionCreateInput]
}

func (in UserUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, user.FieldEmail, in.Email)
	in.PasswordHash.put(fields, user.FieldPasswordHash)
	in.ActiveProfileID.put(fields, user.FieldActiveProfileID)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges: edges(
			in.ActiveProfile.edge(user.EdgeActiveProfile),
			in.Memberships.edge(user.EdgeMemberships),
			in.Accounts.edge(user.EdgeAccounts),
			in.Sessions.edge(user.EdgeSessions),
		),
	}
}

var userKind = kind[User, UserCreateInput, UserUpdateInput]{name: user.Model, decode: decodeUser}

// UserClient is a client for the User schema.
type UserClient struct {
	*delegate[User, UserCreateInput, UserUpdateInput]
}

// QueryMemberships queries the memberships edge of a User.
func (c *UserClient) QueryMemberships(u *User) *Query[ProfileMember, []*ProfileMember] {
	return traverse(c.model, u.ID, user.EdgeMemberships, newDelegate(c.config, profileMemberKind).FindMany())
}

// QueryAccounts queries the accounts edge of a User.
func (c *UserClient) QueryAccounts(u *User) *Query[Account, []*Account] {
	return traverse(c.model, u.ID, user.EdgeAccounts, newDelegate(c.config, accountKind).FindMany())
}

// QuerySessions queries the sessions edge of a User.
func (c *UserClient) QuerySessions(u *User) *Query[Session, []*Session] {
	return traverse(c.model, u.ID, user.EdgeSessions, newDelegate(c.config, sessionKind).FindMany())
}

// QueryActiveProfile queries the active_profile edge of a User.
func (c *UserClient) QueryActiveProfile(u *User) *Query[Profile, []*Profile] {
	return traverse(c.model, u.ID, user.EdgeActiveProfile, newDelegate(c.config, profileKind).FindMany())
}
