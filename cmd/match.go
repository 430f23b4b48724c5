package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmesh/internal/directory"
	"github.com/spigell/skillmesh/internal/filtering"
	logutil "github.com/spigell/skillmesh/internal/logger"
	"github.com/spigell/skillmesh/internal/matching"
)

const (
	PromptContacts      = "Show contacts of a candidate"
	PromptReportBySkill = "Report by skill"
	PromptDumpToFile    = "Dump candidates to file"
	PromptMarkContacted = "Append all candidates to exclude file"
	PromptExit          = "Exit"
	PromptBack          = "back"

	maxRequestPreview = 120
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match [request text]",
	Short: "Rank directory users against a help request",
	Run: func(cmd *cobra.Command, args []string) {
		match(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("request", "r", "", "help request text")
	matchCmd.Flags().String("request-file", "", "read the help request from a file ('-' for stdin)")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking and exit without prompting")
	matchCmd.Flags().StringP("exclude-file", "e", "", "file with users already contacted. Default is unset.")
	matchCmd.Flags().String("policy", "", "extraction policy: fixed or open")
	matchCmd.Flags().String("scoring", "", "scoring mode: coverage or raw-count")

	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("extraction.policy", matchCmd.Flags().Lookup("policy"))
	viper.BindPFlag("scoring.mode", matchCmd.Flags().Lookup("scoring"))
}

func match(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	request, err := readRequest(cmd, args)
	if err != nil {
		logger.Fatal("reading help request", zap.Error(err))
	}

	engine, err := newEngine(config)
	if err != nil {
		logger.Fatal("building matching engine",
			zap.Error(err),
			zap.String("hint", "set extraction.policy (fixed|open) and scoring.mode (coverage|raw-count) in the config or via --policy/--scoring"),
		)
	}
	defer engine.Release()

	snapshot, err := loadSnapshot(config, logger)
	if err != nil {
		logger.Fatal("loading directory", zap.Error(err),
			zap.String("hint", "set SKILLMESH_DIRECTORY, --directory or the 'directory' key in the configuration file"),
		)
	}

	dir := snapshot.Directory()
	outcome, err := engine.Match(request, dir)
	if err != nil {
		logger.Fatal("ranking directory", zap.Error(err))
	}

	matchLogger := logutil.WithCommonFields(logger, outcome.Policy.String(), outcome.Mode.String())
	matchLogger.Info("ranked directory",
		zap.String("request_preview", logutil.Truncate(request, maxRequestPreview)),
		zap.Strings("tokens", outcome.Tokens.Sorted()),
		zap.Int("users", len(dir)),
		zap.Int("matches", len(outcome.Results)),
	)

	if len(outcome.Results) == 0 {
		matchLogger.Info("exiting", zap.String("reason", "no users match the request"))
		return
	}

	candidates := directory.Enrich(outcome.Results, snapshot)
	if dropped := len(outcome.Results) - candidates.Len(); dropped > 0 {
		matchLogger.Warn("matched users without a user record were dropped", zap.Int("count", dropped))
	}

	candidates, err = filtering.Run(ctx, filterConfig(config, outcome.Mode), filtering.Deps{Logger: matchLogger}, filtering.Default(), candidates)
	if err != nil {
		matchLogger.Fatal("filtering failed", zap.Error(err))
	}

	if candidates.Len() == 0 {
		matchLogger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	out := cmd.OutOrStdout()
	printCandidates(out, candidates)

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		items := []string{PromptContacts, PromptReportBySkill, PromptDumpToFile}
		if strings.TrimSpace(config.ExcludeFile) != "" {
			items = append(items, PromptMarkContacted)
		}
		items = append(items, PromptExit)

		actionPrompt := promptui.Select{
			Label: "What next?",
			Items: items,
		}

		_, action, err := actionPrompt.Run()
		if err != nil {
			matchLogger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, out, matchLogger, config, candidates); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			matchLogger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, config *Config, candidates *directory.Candidates) error {
	switch action {
	case PromptContacts:
		return showContacts(out, candidates)
	case PromptReportBySkill:
		printReport(out, candidates.ReportBySkill())
		return nil
	case PromptDumpToFile:
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump candidates to file: %w", err)
		}
		logger.Info("dumping candidates to file", zap.String("filename", filename))
		return nil
	case PromptMarkContacted:
		if err := markContacted(config.ExcludeFile, candidates); err != nil {
			return err
		}
		logger.Info("appended to exclude file",
			zap.String("filename", config.ExcludeFile),
			zap.Int("count", candidates.Len()),
		)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "requested from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showContacts(out io.Writer, candidates *directory.Candidates) error {
	for {
		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(candidates.Names(), PromptBack),
		}

		_, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		candidate := candidates.FindByName(selected)
		if candidate == nil {
			return fmt.Errorf("there is no such candidate %s", selected)
		}

		fmt.Fprintf(out, "%s\n  score:   %d\n  matched: %s\n  email:   %s\n  phone:   %s\n",
			candidate.Name, candidate.Score,
			strings.Join(candidate.MatchedSkills, ", "),
			candidate.Email, candidate.Phone,
		)
	}
}

func markContacted(path string, candidates *directory.Candidates) error {
	excluded, err := directory.GetExcludedUsersFromFile(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(candidates.ToExcluded())

	return excluded.ToFile(path)
}

// newEngine builds the matching engine. Both the extraction policy and the
// scoring mode have to be set explicitly.
func newEngine(config *Config) (*matching.Engine, error) {
	policy, err := matching.NewPolicy(config.Extraction.Policy, config.Extraction.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("extraction policy: %w", err)
	}

	extractor, err := matching.NewExtractor(policy)
	if err != nil {
		return nil, err
	}

	mode, err := matching.ParseScoringMode(config.Scoring.Mode)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}

	var opts []matching.RankerOption
	if config.Scoring.Workers > 0 {
		opts = append(opts, matching.WithWorkers(config.Scoring.Workers))
	}
	if config.Scoring.PartitionSize > 0 {
		opts = append(opts, matching.WithPartitionSize(config.Scoring.PartitionSize))
	}

	ranker, err := matching.NewRanker(mode, opts...)
	if err != nil {
		return nil, err
	}

	return matching.NewEngine(extractor, ranker), nil
}

func loadSnapshot(config *Config, logger *zap.Logger) (*directory.Snapshot, error) {
	snapshot, err := directory.Load(config.Directory)
	if err != nil {
		return nil, err
	}

	for _, warning := range snapshot.Warnings {
		logger.Warn("directory row adjusted", zap.String("warning", warning))
	}

	logger.Debug("loaded directory",
		zap.String("path", config.Directory),
		zap.Int("users", snapshot.Len()),
		zap.Int("skills", len(snapshot.Skills)),
	)
	return snapshot, nil
}

func filterConfig(config *Config, mode matching.ScoringMode) *filtering.Config {
	return &filtering.Config{
		Mode:         mode,
		MinimumScore: config.Results.MinimumScore,
		ExcludeUsers: config.Results.ExcludeUsers,
		ExcludeFile:  config.ExcludeFile,
		Limit:        config.Results.Limit,
	}
}

// readRequest takes the request from --request, --request-file or the
// positional arguments, in that order. An explicitly set --request is used
// as is, even when blank.
func readRequest(cmd *cobra.Command, args []string) (string, error) {
	if cmd.Flags().Changed("request") {
		request, _ := cmd.Flags().GetString("request")
		return request, nil
	}

	if path, _ := cmd.Flags().GetString("request-file"); strings.TrimSpace(path) != "" {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return "", fmt.Errorf("reading request file %q: %w", path, err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	return "", errors.New("help request is empty; pass it as arguments, --request or --request-file")
}

func printCandidates(out io.Writer, candidates *directory.Candidates) {
	for _, line := range candidates.Table() {
		fmt.Fprintln(out, line)
	}
}

func printReport(out io.Writer, report map[string][]string) {
	skills := make([]string, 0, len(report))
	for skill := range report {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	for _, skill := range skills {
		fmt.Fprintf(out, "%s: %s\n", skill, strings.Join(report[skill], ", "))
	}
}
