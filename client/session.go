package client

import (
	"time"

	"github.com/syssam/socialgraph/client/session"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Session is a login session of a user.
type Session struct {
	ID           string    `json:"id,omitempty"`
	SessionToken string    `json:"session_token,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Expires      time.Time `json:"expires,omitempty"`

	Edges  SessionEdges   `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// SessionEdges holds the relations/edges for the Session entity.
type SessionEdges struct {
	User *User `json:"user,omitempty"`

	loadedUser bool
}

// UserOrErr returns the User value or an error if the edge
// was not loaded in eager-loading.
func (e SessionEdges) UserOrErr() (*User, error) {
	return loaded(e.User, e.loadedUser, session.EdgeUser)
}

func decodeSession(r *sqlgraph.Record) *Session {
	s := &Session{
		ID:           str(r, session.FieldID),
		SessionToken: str(r, session.FieldSessionToken),
		UserID:       str(r, session.FieldUserID),
		Expires:      timestamp(r, session.FieldExpires),
		Counts:       counts(r),
	}
	s.Edges.User, s.Edges.loadedUser = one(r, session.EdgeUser, decodeUser)
	return s
}

// Expired reports whether the session expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}

// SessionCreateInput is the data of a new session.
type SessionCreateInput struct {
	ID           string
	SessionToken string
	// UserID and User are exclusive.
	UserID  string
	User    *One[UserCreateInput]
	Expires time.Time
}

func (in SessionCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := map[string]any{
		session.FieldSessionToken: in.SessionToken,
		session.FieldExpires:      in.Expires,
	}
	putKey(fields, session.FieldID, in.ID)
	putKey(fields, session.FieldUserID, in.UserID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges:  edges(in.User.edge(session.EdgeUser)),
	}
}

// SessionUpdateInput holds the changes of a session update.
type SessionUpdateInput struct {
	SessionToken *string
	UserID       *string
	User         *One[UserCreateInput]
	Expires      *time.Time
}

func (in SessionUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, session.FieldSessionToken, in.SessionToken)
	putPtr(fields, session.FieldUserID, in.UserID)
	putPtr(fields, session.FieldExpires, in.Expires)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges:  edges(in.User.edge(session.EdgeUser)),
	}
}

var sessionKind = kind[Session, SessionCreateInput, SessionUpdateInput]{name: session.Model, decode: decodeSession}

// SessionClient is a client for the Session schema.
type SessionClient struct {
	*delegate[Session, SessionCreateInput, SessionUpdateInput]
}

// QueryUser queries the user edge of a Session.
func (c *SessionClient) QueryUser(s *Session) *Query[User, []*User] {
	return traverse(c.model, s.ID, session.EdgeUser, newDelegate(c.config, userKind).FindMany())
}
