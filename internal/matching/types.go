// Package matching ranks directory users by how well their declared skills
// cover a free-text help request.
package matching

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownScoringMode is returned when a scoring mode is not recognized.
	ErrUnknownScoringMode = errors.New("unknown scoring mode")
	// ErrUnknownPolicy is returned when an extraction policy is not recognized.
	ErrUnknownPolicy = errors.New("unknown extraction policy")
)

// Level is the self-declared proficiency of a skill. It is stored with the
// skill but does not influence scoring.
type Level int

const (
	LevelBeginner Level = iota
	LevelIntermediate
	LevelAdvanced
)

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "advanced":
		return LevelAdvanced, nil
	default:
		return LevelBeginner, fmt.Errorf("unknown skill level %q", s)
	}
}

// SkillRecord is a single declared skill of a user.
type SkillRecord struct {
	Skill string
	Level Level
}

// Directory maps user names to their declared skills.
type Directory map[string][]SkillRecord

// TokenSet is a set of normalized candidate skill terms.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from already normalized tokens.
func NewTokenSet(tokens ...string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

func (s TokenSet) Len() int { return len(s) }

func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in ascending order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Text renders the set back into request text. Extracting it again with the
// same policy yields the same set.
func (s TokenSet) Text() string {
	return strings.Join(s.Sorted(), " ")
}

// MatchResult is one ranked user. MatchedSkills is sorted ascending.
type MatchResult struct {
	Name          string
	Score         int
	MatchedSkills []string
}
