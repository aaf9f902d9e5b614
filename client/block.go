package client

import (
	"time"

	"github.com/syssam/socialgraph/client/block"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Block is a directed block of one profile by another.
type Block struct {
	ID               string    `json:"id,omitempty"`
	BlockerProfileID string    `json:"blocker_profile_id,omitempty"`
	BlockedProfileID string    `json:"blocked_profile_id,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`

	Edges  BlockEdges     `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// BlockEdges holds the relations/edges for the Block entity.
type BlockEdges struct {
	Blocker *Profile `json:"blocker,omitempty"`
	Blocked *Profile `json:"blocked,omitempty"`

	loadedBlocker bool
	loadedBlocked bool
}

// BlockerOrErr returns the Blocker value or an error if the edge
// was not loaded in eager-loading.
func (e BlockEdges) BlockerOrErr() (*Profile, error) {
	return loaded(e.Blocker, e.loadedBlocker, block.EdgeBlocker)
}

// BlockedOrErr returns the Blocked value or an error if the edge
// was not loaded in eager-loading.
func (e BlockEdges) BlockedOrErr() (*Profile, error) {
	return loaded(e.Blocked, e.loadedBlocked, block.EdgeBlocked)
}

func decodeBlock(r *sqlgraph.Record) *Block {
	b := &Block{
		ID:               str(r, block.FieldID),
		BlockerProfileID: str(r, block.FieldBlockerProfileID),
		BlockedProfileID: str(r, block.FieldBlockedProfileID),
		CreatedAt:        timestamp(r, block.FieldCreatedAt),
		Counts:           counts(r),
	}
	b.Edges.Blocker, b.Edges.loadedBlocker = one(r, block.EdgeBlocker, decodeProfile)
	b.Edges.Blocked, b.Edges.loadedBlocked = one(r, block.EdgeBlocked, decodeProfile)
	return b
}

// BlockCreateInput is the data of a new block.
type BlockCreateInput struct {
	ID               string
	BlockerProfileID string
	Blocker          *One[ProfileCreateInput]
	BlockedProfileID string
	Blocked          *One[ProfileCreateInput]
}

func (in BlockCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := make(map[string]any)
	putKey(fields, block.FieldID, in.ID)
	putKey(fields, block.FieldBlockerProfileID, in.BlockerProfileID)
	putKey(fields, block.FieldBlockedProfileID, in.BlockedProfileID)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges:  edges(in.Blocker.edge(block.EdgeBlocker), in.Blocked.edge(block.EdgeBlocked)),
	}
}

// BlockUpdateInput holds the changes of a block update.
type BlockUpdateInput struct {
	BlockerProfileID *string
	Blocker          *One[ProfileCreateInput]
	BlockedProfileID *string
	Blocked          *One[ProfileCreateInput]
}

func (in BlockUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, block.FieldBlockerProfileID, in.BlockerProfileID)
	putPtr(fields, block.FieldBlockedProfileID, in.BlockedProfileID)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Edges:  edges(in.Blocker.edge(block.EdgeBlocker), in.Blocked.edge(block.EdgeBlocked)),
	}
}

var blockKind = kind[Block, BlockCreateInput, BlockUpdateInput]{name: block.Model, decode: decodeBlock}

// BlockClient is a client for the Block schema.
type BlockClient struct {
	*delegate[Block, BlockCreateInput, BlockUpdateInput]
}

// QueryBlocker queries the blocker edge of a Block.
func (c *BlockClient) QueryBlocker(b *Block) *Query[Profile, []*Profile] {
	return traverse(c.model, b.ID, block.EdgeBlocker, newDelegate(c.config, profileKind).FindMany())
}

// QueryBlocked queries the blocked edge of a Block.
func (c *BlockClient) QueryBlocked(b *Block) *Query[Profile, []*Profile] {
	return traverse(c.model, b.ID, block.EdgeBlocked, newDelegate(c.config, profileKind).FindMany())
}
