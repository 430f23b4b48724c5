package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillmesh/internal/directory"
	"github.com/spigell/skillmesh/internal/matching"
)

const maxCoverageScore = 100

type minimumScoreFilter struct {
	disabled bool
	reason   string
	minimum  int
}

// NewMinimumScore creates a filter that drops candidates scoring below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 {
		return fmt.Errorf("minimum score must not be negative, got %d", cfg.MinimumScore)
	}
	if cfg.Mode == matching.ScoreCoverage && cfg.MinimumScore > maxCoverageScore {
		return fmt.Errorf("minimum score %d is above %d for %s scoring", cfg.MinimumScore, maxCoverageScore, cfg.Mode)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, c *directory.Candidates) (*directory.Candidates, Step, error) {
	initial := c.Len()
	if f.minimum == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.ExcludeFunc(func(candidate *directory.Candidate) bool {
		return candidate.Score < f.minimum
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("dropping candidates below minimum score",
			zap.Int("minimum_score", f.minimum),
			zap.Strings("dropped_candidates", dropped),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}

type excludedUsersFilter struct {
	users []string
}

// NewExcludedUsers creates a filter that removes candidates listed in the config.
func NewExcludedUsers() Filter {
	return &excludedUsersFilter{}
}

func (f *excludedUsersFilter) Name() string { return "excluded_users" }

func (f *excludedUsersFilter) Disable(string) {}

func (f *excludedUsersFilter) IsEnabled() bool { return true }

func (f *excludedUsersFilter) Validate(cfg *Config) error {
	f.users = nil
	if cfg != nil {
		for _, user := range cfg.ExcludeUsers {
			if user = strings.TrimSpace(user); user != "" {
				f.users = append(f.users, user)
			}
		}
	}
	return nil
}

func (f *excludedUsersFilter) Apply(_ context.Context, deps Deps, c *directory.Candidates) (*directory.Candidates, Step, error) {
	initial := c.Len()
	if len(f.users) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(f.users)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by config",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *excludedUsersFilter) Status() Status {
	details := map[string]string{}
	if len(f.users) > 0 {
		details["users"] = strings.Join(f.users, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates recorded in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *directory.Candidates) (*directory.Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := directory.GetExcludedUsersFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded users from file: %w", err)
	}

	removed := c.Exclude(excluded.Names())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type limitFilter struct {
	disabled bool
	reason   string
	limit    int
}

// NewLimit creates a filter that keeps only the top ranked candidates.
func NewLimit() Filter {
	return &limitFilter{}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *limitFilter) IsEnabled() bool { return !f.disabled }

func (f *limitFilter) Validate(cfg *Config) error {
	f.limit = 0
	if cfg == nil {
		return nil
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", cfg.Limit)
	}
	f.limit = cfg.Limit
	return nil
}

func (f *limitFilter) Apply(_ context.Context, _ Deps, c *directory.Candidates) (*directory.Candidates, Step, error) {
	initial := c.Len()
	cut := c.Limit(f.limit)
	return c, Step{Initial: initial, Dropped: len(cut), Left: c.Len()}, nil
}

func (f *limitFilter) Status() Status {
	details := map[string]string{"limit": "unlimited"}
	if f.limit > 0 {
		details["limit"] = strconv.Itoa(f.limit)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
