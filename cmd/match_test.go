package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmesh/internal/directory"
	"github.com/spigell/skillmesh/internal/matching"
)

func TestNewEngineRequiresExplicitModes(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "missing policy",
			config:  Config{Scoring: ScoringConfig{Mode: "coverage"}},
			wantErr: matching.ErrUnknownPolicy,
		},
		{
			name:    "missing scoring mode",
			config:  Config{Extraction: ExtractionConfig{Policy: "open"}},
			wantErr: matching.ErrUnknownScoringMode,
		},
		{
			name:    "unknown scoring mode",
			config:  Config{Extraction: ExtractionConfig{Policy: "fixed"}, Scoring: ScoringConfig{Mode: "weighted"}},
			wantErr: matching.ErrUnknownScoringMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(&tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewEngineMatches(t *testing.T) {
	config := &Config{
		Extraction: ExtractionConfig{Policy: "fixed", Vocabulary: []string{"Go", "Rust"}},
		Scoring:    ScoringConfig{Mode: "raw-count", Workers: 2, PartitionSize: 1},
	}

	engine, err := newEngine(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Release()

	dir := matching.Directory{
		"Alice": {{Skill: "go"}, {Skill: "rust"}},
		"Bob":   {{Skill: "python"}},
		"Carol": {{Skill: "Go"}},
	}

	outcome, err := engine.Match("We write Go and Rust services", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Policy.Kind() != matching.PolicyFixed || outcome.Mode != matching.ScoreRawCount {
		t.Fatalf("unexpected outcome settings: %s %s", outcome.Policy, outcome.Mode)
	}
	if len(outcome.Results) != 2 || outcome.Results[0].Name != "Alice" || outcome.Results[1].Name != "Carol" {
		t.Fatalf("unexpected results: %+v", outcome.Results)
	}
}

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("request", "r", "", "")
	cmd.Flags().String("request-file", "", "")
	return cmd
}

func TestReadRequest(t *testing.T) {
	cmd := newRequestCmd()
	if _, err := readRequest(cmd, nil); err == nil {
		t.Fatalf("expected error without any request")
	}

	got, err := readRequest(cmd, []string{"need", "react", "help"})
	if err != nil || got != "need react help" {
		t.Fatalf("unexpected request from args: %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "request.txt")
	if err := os.WriteFile(path, []byte("python from file"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cmd.Flags().Set("request-file", path)
	got, err = readRequest(cmd, []string{"ignored"})
	if err != nil || got != "python from file" {
		t.Fatalf("unexpected request from file: %q, %v", got, err)
	}

	cmd.Flags().Set("request", "python from flag")
	got, err = readRequest(cmd, nil)
	if err != nil || got != "python from flag" {
		t.Fatalf("unexpected request from flag: %q, %v", got, err)
	}
}

func TestReadRequestExplicitlyBlank(t *testing.T) {
	cmd := newRequestCmd()
	cmd.Flags().Set("request", "   ")

	got, err := readRequest(cmd, []string{"ignored"})
	if err != nil || got != "   " {
		t.Fatalf("expected blank request to pass through, got %q, %v", got, err)
	}

	engine, err := newEngine(&Config{
		Extraction: ExtractionConfig{Policy: "open"},
		Scoring:    ScoringConfig{Mode: "coverage"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Release()

	outcome, err := engine.Match(got, matching.Directory{"Alice": {{Skill: "python"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Tokens.Len() != 0 || len(outcome.Results) != 0 {
		t.Fatalf("expected empty outcome, got %+v", outcome)
	}
}

func TestReadRequestFromStdin(t *testing.T) {
	cmd := newRequestCmd()
	cmd.SetIn(strings.NewReader("devops from stdin"))
	cmd.Flags().Set("request-file", "-")

	got, err := readRequest(cmd, nil)
	if err != nil || got != "devops from stdin" {
		t.Fatalf("unexpected request from stdin: %q, %v", got, err)
	}
}

func TestHandleActionReportAndExit(t *testing.T) {
	candidates := &directory.Candidates{Items: []*directory.Candidate{
		{Name: "Bob", Score: 2, MatchedSkills: []string{"python", "react"}},
		{Name: "Alice", Score: 1, MatchedSkills: []string{"python"}},
	}}

	var out bytes.Buffer
	if err := handleAction(PromptReportBySkill, &out, zap.NewNop(), &Config{}, candidates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "python: Alice (1), Bob (2)\nreact: Bob (2)\n"
	if out.String() != expected {
		t.Fatalf("unexpected report:\n%s", out.String())
	}

	if err := handleAction(PromptExit, &out, zap.NewNop(), &Config{}, candidates); !errors.Is(err, errExit) {
		t.Fatalf("expected errExit, got %v", err)
	}

	if err := handleAction("bogus", &out, zap.NewNop(), &Config{}, candidates); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestMarkContacted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacted.json")
	candidates := &directory.Candidates{Items: []*directory.Candidate{{Name: "Bob"}}}

	if err := handleAction(PromptMarkContacted, &bytes.Buffer{}, zap.NewNop(), &Config{ExcludeFile: path}, candidates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := markContacted(path, &directory.Candidates{Items: []*directory.Candidate{{Name: "Alice"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	excluded, err := directory.GetExcludedUsersFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(excluded.Names(), ",") != "Bob,Alice" {
		t.Fatalf("unexpected excluded users: %v", excluded.Names())
	}
}

func TestFilterConfig(t *testing.T) {
	config := &Config{
		ExcludeFile: "contacted.json",
		Results:     ResultsConfig{MinimumScore: 40, Limit: 3, ExcludeUsers: []string{"Eve"}},
	}

	got := filterConfig(config, matching.ScoreCoverage)
	if got.Mode != matching.ScoreCoverage || got.MinimumScore != 40 || got.Limit != 3 || got.ExcludeFile != "contacted.json" {
		t.Fatalf("unexpected filter config: %+v", got)
	}
}
