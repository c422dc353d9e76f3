package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInspectReadOnly(t *testing.T) {
	ctx := context.Background()
	s, _, path := newTestStorage(t)
	require.NoError(t, s.UpdateUserXP(ctx, 1, 7, 30, 1))
	require.NoError(t, s.UpdateUserXP(ctx, 2, 7, 10, 1))
	_, err := s.AddWarning(ctx, 1, 7, 9, "spam")
	require.NoError(t, err)

	viewer := NewStorage(zap.NewNop())
	require.NoError(t, viewer.ConnectReadOnly(path))
	defer viewer.Close()

	tables, err := viewer.Tables(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, tb := range tables {
		counts[tb.Name] = tb.Rows
	}
	assert.Equal(t, int64(2), counts[TableUserXP])
	assert.Equal(t, int64(1), counts[TableUserWarnings])
	assert.Equal(t, int64(0), counts[TableCustomCommands])
	assert.Contains(t, counts, TableGuildConfig)

	cols, err := viewer.DescribeTable(ctx, TableUserWarnings)
	require.NoError(t, err)
	require.Len(t, cols, 7)
	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].PK)
	assert.Equal(t, "user_id", cols[1].Name)
	assert.True(t, cols[1].NotNull)
	assert.Equal(t, "active", cols[6].Name)
	assert.Equal(t, "BOOLEAN", cols[6].Type)
	assert.Equal(t, "1", cols[6].Default)

	dump, err := viewer.DumpTable(ctx, TableUserXP, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "guild_id", "xp", "level", "last_message", "total_messages"}, dump.Columns)
	assert.Len(t, dump.Rows, 1)

	_, err = viewer.DumpTable(ctx, "user_xp; DROP TABLE user_xp", 1)
	assert.ErrorIs(t, err, ErrUnknownTable)
	_, err = viewer.DescribeTable(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownTable)

	assert.Error(t, viewer.UpdateUserXP(ctx, 3, 7, 1, 1))
}

func TestInspectMissingFile(t *testing.T) {
	viewer := NewStorage(zap.NewNop())
	err := viewer.ConnectReadOnly(filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
