package persist

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRows(t *testing.T) {
	src := sampleRows(9, []Sample{
		{Frame: 1, System: "MovementSystem", Took: 1500 * time.Microsecond, Entities: 10},
		{Frame: 1, System: "RenderSystem", Took: 2 * time.Millisecond, Entities: 4},
	})

	var rows [][]any
	for src.Next() {
		vals, err := src.Values()
		require.NoError(t, err)
		rows = append(rows, vals)
	}
	require.NoError(t, src.Err())
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(9), int64(1), "MovementSystem", int64(1500), int32(10)}, rows[0])
	assert.Equal(t, int64(2000), rows[1][3])
	assert.Len(t, rows[0], len(sampleColumns))
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	body, err := fs.ReadFile(migrations, names[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "-- +goose Up"))
	assert.True(t, strings.Contains(string(body), "frame_samples"))
}
