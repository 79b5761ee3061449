package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestDecode(t *testing.T) {
	t.Run("empty array", func(t *testing.T) {
		todos, err := Decode([]byte(EmptyDocument))
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	t.Run("preserves order", func(t *testing.T) {
		todos, err := Decode([]byte(`[
			{"id": 3, "title": "c", "completed": true},
			{"id": 1, "title": "a"}
		]`))
		require.NoError(t, err)
		assert.Equal(t, []model.Todo{
			{ID: 3, Title: "c", Completed: true},
			{ID: 1, Title: "a"},
		}, todos)
	})

	rejects := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{oops`, "json unmarshal"},
		{"trailing data", `[] x`, "json unmarshal"},
		{"object", `{"id": 1}`, "schema"},
		{"null", `null`, "schema"},
		{"string id", `[{"id": "1", "title": "a"}]`, "/0/id"},
		{"fractional id", `[{"id": 1.5, "title": "a"}]`, "/0/id"},
		{"missing title", `[{"id": 1}]`, "/0"},
		{"bad completed", `[{"id": 1, "title": "a"}, {"id": 2, "title": "b", "completed": "yes"}]`, "/1/completed"},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncodeStable(t *testing.T) {
	todos := []model.Todo{
		{ID: 1, Title: "buy milk"},
		{ID: 4, Title: "walk dog", Completed: true},
	}
	first, err := Encode(todos)
	require.NoError(t, err)

	decoded, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), "\n  {\n    \"id\": 1,")
}

func TestEncodeNil(t *testing.T) {
	b, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyDocument, string(b))
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Kind: IOFailure, Op: "save", Path: "todos.json", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, IOFailure))
	assert.False(t, IsKind(err, ParseFailure))
	assert.Equal(t, "save todos.json (io): disk full", err.Error())
	assert.False(t, IsKind(cause, IOFailure))
}
