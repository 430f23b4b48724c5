package directory

import (
	"errors"
	"sort"
	"strings"

	"github.com/spigell/skillmesh/internal/matching"
)

var ErrNoDirectory = errors.New("directory file is not configured")

// Snapshot is a point-in-time copy of the users and skills tables.
type Snapshot struct {
	Users  []*User
	Skills []*SkillRow
	// Warnings collects rows that were loaded with adjustments.
	Warnings []string
}

type User struct {
	Name  string `mapstructure:"name" json:"name"`
	Bio   string `mapstructure:"bio" json:"bio,omitempty"`
	Email string `mapstructure:"email" json:"email,omitempty"`
	Phone string `mapstructure:"phone" json:"phone,omitempty"`
}

type SkillRow struct {
	Name  string
	Skill string
	Level matching.Level
}

// SkillCount is a skill together with the number of users declaring it.
type SkillCount struct {
	Skill string
	Count int
}

func (s *Snapshot) Len() int {
	return len(s.Users)
}

func (s *Snapshot) FindUser(name string) *User {
	for _, user := range s.Users {
		if user.Name == name {
			return user
		}
	}
	return nil
}

// usersByName indexes users by name. The first record of a name wins, as in
// FindUser.
func (s *Snapshot) usersByName() map[string]*User {
	users := make(map[string]*User, len(s.Users))
	for _, user := range s.Users {
		if _, ok := users[user.Name]; !ok {
			users[user.Name] = user
		}
	}
	return users
}

// Directory groups skill rows by user name in row order.
func (s *Snapshot) Directory() matching.Directory {
	dir := make(matching.Directory)
	for _, row := range s.Skills {
		dir[row.Name] = append(dir[row.Name], matching.SkillRecord{
			Skill: row.Skill,
			Level: row.Level,
		})
	}
	return dir
}

// TopSkills counts skill rows per skill and returns the n most frequent,
// ties broken by skill name. n <= 0 returns all of them.
func (s *Snapshot) TopSkills(n int) []SkillCount {
	counts := make(map[string]int)
	for _, row := range s.Skills {
		skill := strings.TrimSpace(row.Skill)
		if skill == "" {
			continue
		}
		counts[skill]++
	}

	top := make([]SkillCount, 0, len(counts))
	for skill, count := range counts {
		top = append(top, SkillCount{Skill: skill, Count: count})
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Skill < top[j].Skill
	})

	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
