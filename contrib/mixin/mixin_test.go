package mixin_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTimeMixin(t *testing.T) {
	fields := mixin.CreateTime{}.Fields()
	require.Len(t, fields, 1)
	desc := fields[0].Descriptor()
	assert.Equal(t, "created_at", desc.Name)
	assert.Equal(t, field.TypeTime, desc.Info.Type)
	assert.True(t, desc.Immutable)
	assert.Nil(t, desc.UpdateDefault)

	v, ok := desc.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, time.UTC, v.(time.Time).Location())
}

func TestUpdateTimeMixin(t *testing.T) {
	fields := mixin.UpdateTime{}.Fields()
	require.Len(t, fields, 1)
	desc := fields[0].Descriptor()
	assert.Equal(t, "updated_at", desc.Name)
	assert.False(t, desc.Immutable)
	require.NotNil(t, desc.UpdateDefault)
	assert.Equal(t, time.UTC, desc.UpdateDefault().(time.Time).Location())
}

func TestTimeMixin(t *testing.T) {
	fields := mixin.Time{}.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "created_at", fields[0].Descriptor().Name)
	assert.Equal(t, "updated_at", fields[1].Descriptor().Name)
}

func TestIDMixin(t *testing.T) {
	fields := mixin.ID{}.Fields()
	require.Len(t, fields, 1)
	desc := fields[0].Descriptor()
	assert.Equal(t, "id", desc.Name)
	assert.Equal(t, field.TypeString, desc.Info.Type)
	assert.True(t, desc.Immutable)
	assert.Equal(t, 36, desc.Size)

	v1, ok := desc.DefaultValue()
	require.True(t, ok)
	v2, _ := desc.DefaultValue()
	assert.NotEqual(t, v1, v2)
	_, err := uuid.Parse(v1.(string))
	assert.NoError(t, err)
	for _, fn := range desc.Validators {
		assert.NoError(t, fn(v1))
	}
}

func TestMixinsImplementInterface(t *testing.T) {
	for _, m := range []socialgraph.Mixin{mixin.ID{}, mixin.CreateTime{}, mixin.UpdateTime{}, mixin.Time{}} {
		assert.Nil(t, m.Edges())
		assert.Nil(t, m.Indexes())
	}
}
