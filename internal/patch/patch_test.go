package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTriState(t *testing.T) {
	type body struct {
		Name   Field[string] `json:"name"`
		Status Field[string] `json:"status"`
		Count  Field[int]    `json:"count"`
	}

	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"name":"alpha","status":null}`), &b))

	assert.True(t, b.Name.Set)
	require.NotNil(t, b.Name.Value)
	assert.Equal(t, "alpha", *b.Name.Value)

	assert.True(t, b.Status.Set)
	assert.Nil(t, b.Status.Value)
	assert.Equal(t, "", b.Status.Get())

	assert.False(t, b.Count.Set)
}

func TestFieldRejectsWrongType(t *testing.T) {
	var f Field[int]
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &f))
}
