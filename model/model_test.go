package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"":             Beginner,
		"beginner":     Beginner,
		"INTERMEDIATE": Intermediate,
		" Advanced ":   Advanced,
	}
	for in, want := range cases {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDifficulty("Expert")
	assert.Error(t, err)
}

func TestCheatsheetMeta_Key(t *testing.T) {
	m := CheatsheetMeta{Category: "CI-CD", Slug: "Jenkins"}
	assert.Equal(t, "CI-CD/Jenkins", m.Key())
}

func TestPage_JSONShape(t *testing.T) {
	p := Page[CheatsheetMeta]{Items: []CheatsheetMeta{}, Total: 12, Page: 2, Limit: 10, TotalPages: 2}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cheatsheets":[],"total":12,"page":2,"limit":10,"totalPages":2}`, string(data))
}
