package directory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/skillmesh/internal/matching"
)

var ErrEmptyName = errors.New("profile name is required")

// Profile is a user registration: one users row and the skills it declares.
type Profile struct {
	User   User
	Skills []ProfileSkill
}

// ProfileSkill is a declared skill as entered. A blank level means Beginner.
type ProfileSkill struct {
	Skill string
	Level string
}

// AppendResult tells what AppendProfile wrote.
type AppendResult struct {
	NewUser bool
	Skills  int
}

// AppendProfile adds profile to the directory file at path, creating the file
// when it does not exist. Existing rows are written back unchanged. A user
// that is already present only gets the new skill rows. Files ending in .json
// are written as JSON, everything else as YAML.
func AppendProfile(path string, profile *Profile) (*AppendResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoDirectory
	}

	user, skills, err := profile.rows()
	if err != nil {
		return nil, err
	}

	f, err := readFile(path)
	if err != nil {
		return nil, err
	}

	result := &AppendResult{Skills: len(skills)}
	if !f.hasUser(user.Name) {
		f.Users = append(f.Users, map[string]any{
			"name":  user.Name,
			"bio":   user.Bio,
			"email": user.Email,
			"phone": user.Phone,
		})
		result.NewUser = true
	}

	for _, row := range skills {
		f.Skills = append(f.Skills, map[string]any{
			"name":  row.Name,
			"skill": row.Skill,
			"level": row.Level.String(),
		})
	}

	data, err := f.encode(strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("encode directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing directory file %q: %w", path, err)
	}

	return result, nil
}

func (p *Profile) rows() (*User, []*SkillRow, error) {
	if p == nil {
		return nil, nil, ErrEmptyName
	}

	user := &User{
		Name:  strings.TrimSpace(p.User.Name),
		Bio:   strings.TrimSpace(p.User.Bio),
		Email: strings.TrimSpace(p.User.Email),
		Phone: strings.TrimSpace(p.User.Phone),
	}
	if user.Name == "" {
		return nil, nil, ErrEmptyName
	}

	skills := make([]*SkillRow, 0, len(p.Skills))
	for _, s := range p.Skills {
		skill := strings.TrimSpace(s.Skill)
		if skill == "" {
			continue
		}

		level := matching.LevelBeginner
		if strings.TrimSpace(s.Level) != "" {
			parsed, err := matching.ParseLevel(s.Level)
			if err != nil {
				return nil, nil, fmt.Errorf("skill %q: %w", skill, err)
			}
			level = parsed
		}

		skills = append(skills, &SkillRow{Name: user.Name, Skill: skill, Level: level})
	}

	return user, skills, nil
}

func readFile(path string) (*file, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file{}, nil
		}
		return nil, fmt.Errorf("reading directory file %q: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}
	return &f, nil
}

func (f *file) hasUser(name string) bool {
	for _, row := range f.Users {
		if value, ok := row["name"]; ok && strings.TrimSpace(fmt.Sprint(value)) == name {
			return true
		}
	}
	return false
}

func (f *file) encode(asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
