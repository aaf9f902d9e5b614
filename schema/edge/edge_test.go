package edge_test

import (
	"testing"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/edge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test schema types for edge testing.
type (
	User    struct{ socialgraph.Schema }
	Profile struct{ socialgraph.Schema }
	Follow  struct{ socialgraph.Schema }
)

type testAnnotation string

func (testAnnotation) Name() string { return "TestAnnotation" }

func TestEdgeTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *edge.Descriptor
		validate func(t *testing.T, desc *edge.Descriptor)
	}{
		{
			name: "basic_edge",
			build: func() *edge.Descriptor {
				return edge.To("followers", Follow.Type).Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "followers", desc.Name)
				assert.Equal(t, "Follow", desc.Type)
				assert.False(t, desc.Inverse)
				assert.False(t, desc.Unique)
				assert.False(t, desc.Required)
				assert.Empty(t, desc.Field)
				assert.Empty(t, desc.Comment)
			},
		},
		{
			name: "unique_edge",
			build: func() *edge.Descriptor {
				return edge.To("profile", Profile.Type).Unique().Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.True(t, desc.Unique)
			},
		},
		{
			name: "edge_with_all_options",
			build: func() *edge.Descriptor {
				return edge.To("memberships", User.Type).
					Immutable().
					Comment("profile memberships").
					Annotations(testAnnotation("a")).
					Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "User", desc.Type)
				assert.True(t, desc.Immutable)
				assert.Equal(t, "profile memberships", desc.Comment)
				require.Len(t, desc.Annotations, 1)
				assert.Equal(t, "TestAnnotation", desc.Annotations[0].Name())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

func TestEdgeFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *edge.Descriptor
		validate func(t *testing.T, desc *edge.Descriptor)
	}{
		{
			name: "basic_inverse_edge",
			build: func() *edge.Descriptor {
				return edge.From("follower_profile", Profile.Type).Ref("following").Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "follower_profile", desc.Name)
				assert.Equal(t, "Profile", desc.Type)
				assert.Equal(t, "following", desc.RefName)
				assert.True(t, desc.Inverse)
				assert.False(t, desc.Unique)
			},
		},
		{
			name: "inverse_with_field",
			build: func() *edge.Descriptor {
				return edge.From("user", User.Type).
					Ref("sessions").
					Field("user_id").
					Unique().
					Required().
					Immutable().
					Comment("owner").
					Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "user_id", desc.Field)
				assert.True(t, desc.Unique)
				assert.True(t, desc.Required)
				assert.True(t, desc.Immutable)
				assert.Equal(t, "owner", desc.Comment)
			},
		},
		{
			name: "inverse_annotations",
			build: func() *edge.Descriptor {
				return edge.From("user", User.Type).
					Annotations(testAnnotation("a"), testAnnotation("b")).
					Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Len(t, desc.Annotations, 2)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

// Two roles on the same target keep their own names and fields.
func TestSelfReferentialRoles(t *testing.T) {
	follower := edge.From("follower_profile", Profile.Type).
		Ref("following").
		Field("follower_profile_id").
		Unique().
		Required().
		Descriptor()
	following := edge.From("following_profile", Profile.Type).
		Ref("followers").
		Field("following_profile_id").
		Unique().
		Required().
		Descriptor()
	assert.Equal(t, follower.Type, following.Type)
	assert.NotEqual(t, follower.Field, following.Field)
	assert.NotEqual(t, follower.RefName, following.RefName)
}

func TestEdgeTypeName(t *testing.T) {
	assert.Equal(t, "Profile", edge.To("p", Profile.Type).Descriptor().Type)
	assert.Empty(t, edge.To("p", nil).Descriptor().Type)
	assert.Empty(t, edge.To("p", "Profile").Descriptor().Type)
	assert.Empty(t, edge.To("p", 42).Descriptor().Type)
	assert.Equal(t, "Profile", edge.To("p", &Profile{}).Descriptor().Type)
	var _ schema.Annotation = testAnnotation("")
}
