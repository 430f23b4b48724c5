package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spigell/skillmesh/internal/matching"
)

// Candidates is a ranked list of users enriched with contact details.
type Candidates struct {
	Items []*Candidate
}

type Candidate struct {
	Name          string   `json:"name"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
}

type ExcludedUsers struct {
	Items []*ExcludedUser
}

type ExcludedUser struct {
	Name       string
	Email      string
	ExcludedAt time.Time
}

// Enrich joins ranked results with user records. Results without a user
// record are dropped. Ranking order is kept.
func Enrich(results []matching.MatchResult, snapshot *Snapshot) *Candidates {
	candidates := &Candidates{Items: make([]*Candidate, 0, len(results))}
	if snapshot == nil {
		return candidates
	}

	users := snapshot.usersByName()
	for _, r := range results {
		user, ok := users[r.Name]
		if !ok {
			continue
		}
		candidates.Items = append(candidates.Items, &Candidate{
			Name:          r.Name,
			Score:         r.Score,
			MatchedSkills: append([]string(nil), r.MatchedSkills...),
			Email:         user.Email,
			Phone:         user.Phone,
		})
	}
	return candidates
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByName(name string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.Name == name {
			return candidate
		}
	}
	return nil
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		names = append(names, candidate.Name)
	}
	return names
}

// Exclude removes candidates with the given names and returns the removed
// names. The order of the remaining candidates is preserved.
func (c *Candidates) Exclude(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[name] = struct{}{}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if _, ok := targets[candidate.Name]; ok {
			excluded = append(excluded, candidate.Name)
			continue
		}
		kept = append(kept, candidate)
	}
	clear(c.Items[len(kept):])
	c.Items = kept

	return excluded
}

// ExcludeFunc removes candidates for which drop returns true.
func (c *Candidates) ExcludeFunc(drop func(*Candidate) bool) []string {
	var names []string
	for _, candidate := range c.Items {
		if drop(candidate) {
			names = append(names, candidate.Name)
		}
	}
	return c.Exclude(names)
}

// Limit keeps the first n candidates and returns the names cut off.
// n <= 0 keeps everything.
func (c *Candidates) Limit(n int) []string {
	if n <= 0 || len(c.Items) <= n {
		return nil
	}

	var cut []string
	for _, candidate := range c.Items[n:] {
		cut = append(cut, candidate.Name)
	}
	clear(c.Items[n:])
	c.Items = c.Items[:n]
	return cut
}

// ReportBySkill groups candidate names under each skill they matched.
func (c *Candidates) ReportBySkill() map[string][]string {
	report := make(map[string][]string)
	for _, candidate := range c.Items {
		for _, skill := range candidate.MatchedSkills {
			report[skill] = append(report[skill], fmt.Sprintf("%s (%d)", candidate.Name, candidate.Score))
		}
	}
	for skill := range report {
		sort.Strings(report[skill])
	}
	return report
}

// Table renders candidates as aligned text lines.
func (c *Candidates) Table() []string {
	lines := make([]string, 0, len(c.Items))
	for idx, candidate := range c.Items {
		lines = append(lines, fmt.Sprintf("%2d. %-20s %4d  %s  %s %s",
			idx+1, candidate.Name, candidate.Score,
			strings.Join(candidate.MatchedSkills, ","),
			candidate.Email, candidate.Phone,
		))
	}
	return lines
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (c *Candidates) ToExcluded() *ExcludedUsers {
	excluded := &ExcludedUsers{}
	now := time.Now().UTC()
	for _, candidate := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedUser{
			Name:       candidate.Name,
			Email:      candidate.Email,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedUsersFromFile reads an exclude file. A missing or empty file is
// an empty list.
func GetExcludedUsersFromFile(path string) (*ExcludedUsers, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedUsers{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedUsers{}, nil
	}

	var excluded ExcludedUsers
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedUsers) Append(s *ExcludedUsers) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedUsers) Names() []string {
	names := make([]string, 0, len(e.Items))
	for _, user := range e.Items {
		names = append(names, user.Name)
	}
	return names
}

func (e *ExcludedUsers) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
