package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	d, err := Lookup(101)
	require.NoError(t, err)
	assert.Equal(t, "AUTO_DOWNLOAD", d.Key)
	assert.Equal(t, TypeBool, d.Type)
	assert.True(t, d.Default.Bool())
	assert.Equal(t, 1, d.GroupCode)

	_, err = Lookup(0)
	require.ErrorIs(t, err, ErrUnknownSettingCode)
}

func TestCatalogOrderAndMembership(t *testing.T) {
	codes := make([]int, 0)
	for _, d := range Definitions() {
		codes = append(codes, d.Code)
	}

	assert.Equal(t, []int{101, 102, 201, 202, 210, 301, 302, 401, 402}, codes)

	members := 0

	for _, g := range Groups() {
		defs, err := DefinitionsInGroup(g.Code)
		require.NoError(t, err)

		for _, d := range defs {
			assert.Equal(t, g.Code, d.GroupCode)

			same, err := Lookup(d.Code)
			require.NoError(t, err)
			assert.Same(t, same, d, "groups reference catalog entries")
		}

		members += len(defs)
	}

	assert.Equal(t, len(Definitions()), members)

	_, err := DefinitionsInGroup(42)
	require.ErrorIs(t, err, ErrUnknownGroupCode)
}

func TestNewCatalogRejectsBadTables(t *testing.T) {
	testCases := []struct {
		name string
		rows []groupRow
	}{
		{
			name: "duplicate code across groups",
			rows: []groupRow{
				{code: 1, defs: []Definition{{Code: 1, Type: TypeBool, Default: BoolValue(true)}}},
				{code: 2, defs: []Definition{{Code: 1, Type: TypeBool, Default: BoolValue(true)}}},
			},
		},
		{
			name: "duplicate group",
			rows: []groupRow{{code: 1}, {code: 1}},
		},
		{
			name: "default type mismatch",
			rows: []groupRow{
				{code: 1, defs: []Definition{{Code: 1, Type: TypeInt, Default: StringValue("3")}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newCatalog(tc.rows)
			require.Error(t, err)
			assert.Panics(t, func() { mustBuildCatalog(tc.rows) })
		})
	}
}
