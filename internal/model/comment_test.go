package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment_IsEdited_GracePeriod(t *testing.T) {
	created := time.Now()

	quickFix := &Comment{Edited: true, CreatedAt: created, UpdatedAt: created.Add(30 * time.Second)}
	assert.False(t, quickFix.IsEdited())

	lateEdit := &Comment{Edited: true, CreatedAt: created, UpdatedAt: created.Add(2 * time.Minute)}
	assert.True(t, lateEdit.IsEdited())

	neverEdited := &Comment{Edited: false, CreatedAt: created, UpdatedAt: created.Add(2 * time.Minute)}
	assert.False(t, neverEdited.IsEdited())
}

func TestComment_SoftDeleteAndRestore(t *testing.T) {
	c := &Comment{Content: "original"}

	c.SoftDelete("moderator-id")
	assert.True(t, c.Deleted)
	require.NotNil(t, c.DeletedByID)
	assert.Equal(t, "moderator-id", *c.DeletedByID)
	assert.NotNil(t, c.DeletedAt)
	assert.Equal(t, "original", c.Content)

	c.Restore()
	assert.False(t, c.Deleted)
	assert.Nil(t, c.DeletedByID)
	assert.Nil(t, c.DeletedAt)
	assert.Equal(t, "original", c.Content)
}

func TestComment_MarshalJSON_IsEditedField(t *testing.T) {
	created := time.Now()
	c := &Comment{
		ID:        "c1",
		Content:   "hello",
		Edited:    true,
		CreatedAt: created,
		UpdatedAt: created.Add(5 * time.Minute),
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["is_edited"])
}
