package directory

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/spigell/skillmesh/internal/matching"
)

// file mirrors the on-disk layout: two tables of loosely typed rows.
// JSON files are read by the same decoder.
type file struct {
	Users  []map[string]any `yaml:"users" json:"users"`
	Skills []map[string]any `yaml:"skills" json:"skills"`
}

type rawSkillRow struct {
	Name  string `mapstructure:"name"`
	Skill string `mapstructure:"skill"`
	Level string `mapstructure:"level"`
}

// Load reads a directory snapshot from a YAML or JSON file.
func Load(path string) (*Snapshot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoDirectory
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file %q: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a directory snapshot. Rows without a name are skipped and a
// missing or unknown level falls back to Beginner; both are noted in Warnings.
func Parse(data []byte) (*Snapshot, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}

	snapshot := &Snapshot{
		Users:  make([]*User, 0, len(f.Users)),
		Skills: make([]*SkillRow, 0, len(f.Skills)),
	}

	for idx, row := range f.Users {
		var user User
		if err := decodeRow(row, &user); err != nil {
			return nil, fmt.Errorf("users row %d: %w", idx+1, err)
		}

		user.Name = strings.TrimSpace(user.Name)
		if user.Name == "" {
			snapshot.warn("users row %d: empty name, skipped", idx+1)
			continue
		}
		snapshot.Users = append(snapshot.Users, &user)
	}

	for idx, row := range f.Skills {
		var raw rawSkillRow
		if err := decodeRow(row, &raw); err != nil {
			return nil, fmt.Errorf("skills row %d: %w", idx+1, err)
		}

		name := strings.TrimSpace(raw.Name)
		if name == "" {
			snapshot.warn("skills row %d: empty name, skipped", idx+1)
			continue
		}

		level := matching.LevelBeginner
		if strings.TrimSpace(raw.Level) != "" {
			parsed, err := matching.ParseLevel(raw.Level)
			if err != nil {
				snapshot.warn("skills row %d: %v, using %s", idx+1, err, level)
			} else {
				level = parsed
			}
		}

		snapshot.Skills = append(snapshot.Skills, &SkillRow{
			Name:  name,
			Skill: raw.Skill,
			Level: level,
		})
	}

	return snapshot, nil
}

func decodeRow(row map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}

func (s *Snapshot) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}
