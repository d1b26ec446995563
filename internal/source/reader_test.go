package source_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/source"
)

func TestReadRows(t *testing.T) {
	input := strings.Join([]string{
		"game.key,person.key,B_G,B_H",
		"BOS197809070,ricej001,1,2",
		"BOS197809070,yastc101,1,0",
	}, "\n")

	var rows []source.RawRow
	err := source.ReadRows(strings.NewReader(input), func(row source.RawRow) error {
		rows = append(rows, row)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ricej001", rows[0].Get("person.key"))
	assert.Equal(t, "2", rows[0].Get("B_H"))
	assert.Equal(t, "yastc101", rows[1].Get("person.key"))
}

func TestReadRowsRaggedRecords(t *testing.T) {
	// Short rows read missing columns as empty; extra fields are dropped.
	input := strings.Join([]string{
		"game.key,person.key,B_G",
		"BOS197809070,ricej001",
		"BOS197809070,yastc101,1,stray",
	}, "\n")

	var rows []source.RawRow
	err := source.ReadRows(strings.NewReader(input), func(row source.RawRow) error {
		rows = append(rows, row)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Get("B_G"))
	assert.Equal(t, "1", rows[1].Get("B_G"))
	assert.Len(t, rows[1], 3)
}

func TestReadRowsEmptyFile(t *testing.T) {
	err := source.ReadRows(strings.NewReader(""), func(source.RawRow) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadRowsHeaderOnly(t *testing.T) {
	calls := 0
	err := source.ReadRows(strings.NewReader("game.key,person.key\n"), func(source.RawRow) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestReadRowsCallbackErrorStopsIteration(t *testing.T) {
	input := "a,b\n1,2\n3,4\n5,6\n"
	boom := errors.New("boom")

	calls := 0
	err := source.ReadRows(strings.NewReader(input), func(source.RawRow) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
