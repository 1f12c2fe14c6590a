package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate_ByEmail(t *testing.T) {
	in := []Recipient{
		{Name: "Jane Doe", Email: "jane@bbc.com"},
		{Name: "J. Doe", Email: "jane@bbc.com"},
		{Name: "Marco Rossi", Email: "rossi@corriere.it"},
	}

	out := Deduplicate(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Jane Doe", out[0].Name)
	assert.Equal(t, "Marco Rossi", out[1].Name)
}

func TestDeduplicate_EmptyEmailsAllRetained(t *testing.T) {
	in := []Recipient{
		{Name: "A"},
		{Name: "B"},
		{Name: "C", Email: "c@example.com"},
	}

	out := Deduplicate(in)
	assert.Len(t, out, 3)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []Recipient{
		{Name: "A", Email: "a@example.com"},
		{Name: "A2", Email: "a@example.com"},
		{Name: "B"},
		{Name: "C"},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestRank_PriorityOrder(t *testing.T) {
	in := []Recipient{
		{Publication: "unknown", Role: "", Name: UnknownAuthor, Region: RegionGlobal},
		{Publication: "bbc.com", Role: "Editor", Name: "Jane Doe", Region: RegionEurope},
	}

	Rank(in)

	assert.Equal(t, "Jane Doe", in[0].Name)
	assert.Equal(t, UnknownAuthor, in[1].Name)
}

func TestRank_StableOnTies(t *testing.T) {
	in := []Recipient{
		{Name: "First", Email: "first@a.com", Publication: "a.com", Role: "Editor", Region: RegionEurope},
		{Name: "Second", Email: "second@b.com", Publication: "b.com", Role: "Writer", Region: RegionAsia},
	}

	Rank(in)

	assert.Equal(t, "First", in[0].Name)
	assert.Equal(t, "Second", in[1].Name)
}

func TestRank_RoleBeatsRegion(t *testing.T) {
	in := []Recipient{
		{Name: "NoRole", Publication: "a.com", Region: RegionEurope},
		{Name: "HasRole", Publication: "b.com", Role: "Reporter", Region: RegionGlobal},
	}

	Rank(in)
	assert.Equal(t, "HasRole", in[0].Name)
}

func TestDistributable(t *testing.T) {
	assert.True(t, Recipient{Email: "x@y.com"}.Distributable())
	assert.False(t, Recipient{Name: "No Email"}.Distributable())
}
