package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ScoringMode selects the score formula. Scores from different modes are not
// comparable, so a mode is always chosen explicitly.
type ScoringMode int

const (
	// ScoreCoverage is the percentage of request tokens the user covers.
	ScoreCoverage ScoringMode = iota + 1
	// ScoreRawCount is the number of request tokens the user covers.
	ScoreRawCount
)

func (m ScoringMode) String() string {
	switch m {
	case ScoreCoverage:
		return "coverage"
	case ScoreRawCount:
		return "raw-count"
	default:
		return fmt.Sprintf("ScoringMode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m ScoringMode) Valid() bool {
	return m == ScoreCoverage || m == ScoreRawCount
}

// ParseScoringMode accepts "coverage" and "raw-count" (or "count").
func ParseScoringMode(s string) (ScoringMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coverage":
		return ScoreCoverage, nil
	case "raw-count", "raw_count", "count":
		return ScoreRawCount, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScoringMode, s)
	}
}

// Rank scores every user of dir against tokens and returns the users with at
// least one matched skill, ordered by score descending and then by name
// ascending.
func Rank(tokens TokenSet, dir Directory, mode ScoringMode) ([]MatchResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScoringMode, mode)
	}

	results := make([]MatchResult, 0)
	if tokens.Len() == 0 {
		return results, nil
	}

	for name, skills := range dir {
		if result, ok := score(tokens, name, skills, mode); ok {
			results = append(results, result)
		}
	}

	sortResults(results)
	return results, nil
}

func score(tokens TokenSet, name string, skills []SkillRecord, mode ScoringMode) (MatchResult, bool) {
	matched := make([]string, 0)
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		skill := strings.ToLower(strings.TrimSpace(s.Skill))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}

		if tokens.Has(skill) {
			matched = append(matched, skill)
		}
	}

	if len(matched) == 0 {
		return MatchResult{}, false
	}
	sort.Strings(matched)

	value := len(matched)
	if mode == ScoreCoverage {
		value = coverage(len(matched), tokens.Len())
	}

	return MatchResult{Name: name, Score: value, MatchedSkills: matched}, true
}

func coverage(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

func less(a, b MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Name < b.Name
}

func sortResults(results []MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}
