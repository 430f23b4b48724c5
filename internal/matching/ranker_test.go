package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDirectory() Directory {
	return Directory{
		"Alice": {{Skill: "python", Level: LevelAdvanced}},
		"Bob":   {{Skill: "python"}, {Skill: "react"}},
		"Carol": {{Skill: "Rust", Level: LevelIntermediate}},
	}
}

func TestRankRawCount(t *testing.T) {
	t.Parallel()

	got, err := Rank(NewTokenSet("python", "react"), sampleDirectory(), ScoreRawCount)
	require.NoError(t, err)

	expect := []MatchResult{
		{Name: "Bob", Score: 2, MatchedSkills: []string{"python", "react"}},
		{Name: "Alice", Score: 1, MatchedSkills: []string{"python"}},
	}
	assert.Equal(t, expect, got)
}

func TestRankCoverage(t *testing.T) {
	t.Parallel()

	dir := Directory{"Dana": {{Skill: "ai"}}}
	got, err := Rank(NewTokenSet("ai", "ml", "cloud"), dir, ScoreCoverage)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 33, got[0].Score)
	assert.Equal(t, []string{"ai"}, got[0].MatchedSkills)

	dir = Directory{"Eve": {{Skill: "ai"}, {Skill: "ml"}}}
	got, err = Rank(NewTokenSet("ai", "ml", "cloud"), dir, ScoreCoverage)
	require.NoError(t, err)
	assert.Equal(t, 67, got[0].Score)
}

func TestRankEmptyTokens(t *testing.T) {
	t.Parallel()

	for _, mode := range []ScoringMode{ScoreCoverage, ScoreRawCount} {
		got, err := Rank(TokenSet{}, sampleDirectory(), mode)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestRankSkipsNonMatchingUsers(t *testing.T) {
	t.Parallel()

	got, err := Rank(NewTokenSet("python"), sampleDirectory(), ScoreCoverage)
	require.NoError(t, err)

	for _, r := range got {
		assert.NotEqual(t, "Carol", r.Name)
	}
}

func TestRankNormalizesSkillNames(t *testing.T) {
	t.Parallel()

	dir := Directory{
		"Frank": {{Skill: "  PYTHON "}, {Skill: ""}, {Skill: "   "}, {Skill: "python"}},
	}
	got, err := Rank(NewTokenSet("python"), dir, ScoreRawCount)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)
	assert.Equal(t, []string{"python"}, got[0].MatchedSkills)
}

func TestRankTieBreakByName(t *testing.T) {
	t.Parallel()

	dir := Directory{
		"zoe":   {{Skill: "go"}},
		"Mike":  {{Skill: "go"}},
		"Aaron": {{Skill: "go"}},
	}

	for i := 0; i < 20; i++ {
		got, err := Rank(NewTokenSet("go"), dir, ScoreRawCount)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"Aaron", "Mike", "zoe"}, []string{got[0].Name, got[1].Name, got[2].Name})
	}
}

func TestRankUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := Rank(NewTokenSet("go"), sampleDirectory(), ScoringMode(0))
	require.ErrorIs(t, err, ErrUnknownScoringMode)

	_, err = Rank(TokenSet{}, sampleDirectory(), ScoringMode(42))
	require.ErrorIs(t, err, ErrUnknownScoringMode)

	_, err = NewRanker(ScoringMode(7))
	require.ErrorIs(t, err, ErrUnknownScoringMode)
}

func TestParseScoringMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		expect  ScoringMode
		wantErr bool
	}{
		{input: "coverage", expect: ScoreCoverage},
		{input: " Raw-Count ", expect: ScoreRawCount},
		{input: "count", expect: ScoreRawCount},
		{input: "", wantErr: true},
		{input: "weighted", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseScoringMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownScoringMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestRankProperties(t *testing.T) {
	t.Parallel()

	dir := Directory{}
	skills := []string{"python", "java", "react", "cloud", "devops", "css", "html", "go", "rust"}
	for i := 0; i < 60; i++ {
		var records []SkillRecord
		for j, s := range skills {
			if (i+j)%(i%4+2) == 0 {
				records = append(records, SkillRecord{Skill: s})
			}
		}
		dir[fmt.Sprintf("user-%02d", i)] = records
	}

	tokens := Extract("python react cloud css rust kotlin", OpenVocabulary())

	for _, mode := range []ScoringMode{ScoreCoverage, ScoreRawCount} {
		got, err := Rank(tokens, dir, mode)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		for i, r := range got {
			require.NotEmpty(t, r.MatchedSkills)

			userSkills := map[string]bool{}
			for _, s := range dir[r.Name] {
				userSkills[s.Skill] = true
			}
			for _, m := range r.MatchedSkills {
				assert.True(t, tokens.Has(m), "matched %q not in tokens", m)
				assert.True(t, userSkills[m], "matched %q not a skill of %s", m, r.Name)
			}

			switch mode {
			case ScoreCoverage:
				assert.GreaterOrEqual(t, r.Score, 0)
				assert.LessOrEqual(t, r.Score, 100)
			case ScoreRawCount:
				assert.Equal(t, len(r.MatchedSkills), r.Score)
				assert.LessOrEqual(t, r.Score, tokens.Len())
			}

			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Score, r.Score)
			}
		}
	}
}

func TestRankIgnoresLevel(t *testing.T) {
	t.Parallel()

	dir := Directory{
		"Beth": {{Skill: "go", Level: LevelBeginner}},
		"Adam": {{Skill: "go", Level: LevelAdvanced}},
	}
	got, err := Rank(NewTokenSet("go"), dir, ScoreCoverage)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Score, got[1].Score)
	assert.Equal(t, "Adam", got[0].Name)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	l, err := ParseLevel(" advanced")
	require.NoError(t, err)
	assert.Equal(t, LevelAdvanced, l)
	assert.Equal(t, "Advanced", l.String())

	l, err = ParseLevel("guru")
	require.Error(t, err)
	assert.Equal(t, LevelBeginner, l)
}
