package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/models"
	"github.com/syssam/socialgraph/schema"
)

func TestComment(t *testing.T) {
	c := schema.Comment("profile muting another profile")
	assert.Equal(t, "Comment", c.Name())
	assert.Equal(t, "profile muting another profile", c.Text)
}

func TestCommentOf(t *testing.T) {
	tests := []struct {
		name string
		list []schema.Annotation
		want string
	}{
		{"empty", nil, ""},
		{"sql only", []schema.Annotation{sqlschema.OnDelete(sqlschema.Cascade)}, ""},
		{"mixed", []schema.Annotation{sqlschema.Table("follows"), schema.Comment("follows")}, "follows"},
		{"last wins", []schema.Annotation{schema.Comment("mixin"), schema.Comment("model")}, "model"},
		{"nil comment", []schema.Annotation{schema.Comment("kept"), (*schema.CommentAnnotation)(nil)}, "kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.CommentOf(tt.list))
		})
	}
}

// The relation models document their tables; the registry carries the
// comment to the storage layer.
func TestModelComments(t *testing.T) {
	g := models.Graph()
	tests := []struct {
		model string
		want  string
	}{
		{"Follow", "directed follow from one profile to another"},
		{"Block", "profile blocking another profile"},
		{"Mute", "profile muting another profile"},
		{"User", ""},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			m, ok := g.Model(tt.model)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Comment)
		})
	}
	assert.Equal(t, schema.CommentOf(models.Follow{}.Annotations()), g.MustModel("Follow").Comment)
}
