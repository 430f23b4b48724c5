package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmesh/internal/directory"
	logutil "github.com/spigell/skillmesh/internal/logger"
	"github.com/spigell/skillmesh/internal/matching"
)

var profileLevels = []string{
	matching.LevelBeginner.String(),
	matching.LevelIntermediate.String(),
	matching.LevelAdvanced.String(),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Register a user and their skills in the directory file",
	Long: "Register a user and their skills in the directory file.\n" +
		"Without --name the details are asked interactively.",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		var profile *directory.Profile
		if cmd.Flags().Changed("name") {
			profile, err = profileFromFlags(cmd)
		} else {
			profile, err = promptProfile()
		}
		if err != nil {
			logger.Fatal("reading profile", zap.Error(err))
		}

		result, err := directory.AppendProfile(config.Directory, profile)
		if err != nil {
			logger.Fatal("registering profile", zap.Error(err),
				zap.String("hint", "set SKILLMESH_DIRECTORY, --directory or the 'directory' key in the configuration file"),
			)
		}

		logger.Info("registered profile",
			zap.String("name", strings.TrimSpace(profile.User.Name)),
			zap.Bool("new_user", result.NewUser),
			zap.Int("skills", result.Skills),
			zap.String("path", config.Directory),
		)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().String("name", "", "user name")
	profileCmd.Flags().String("bio", "", "short bio")
	profileCmd.Flags().String("email", "", "contact email")
	profileCmd.Flags().String("phone", "", "contact phone")
	profileCmd.Flags().StringArray("skill", nil, "skill as name[:level], can be repeated. Level defaults to Beginner")
}

func profileFromFlags(cmd *cobra.Command) (*directory.Profile, error) {
	profile := &directory.Profile{}
	profile.User.Name, _ = cmd.Flags().GetString("name")
	profile.User.Bio, _ = cmd.Flags().GetString("bio")
	profile.User.Email, _ = cmd.Flags().GetString("email")
	profile.User.Phone, _ = cmd.Flags().GetString("phone")

	if strings.TrimSpace(profile.User.Name) == "" {
		return nil, directory.ErrEmptyName
	}

	skills, _ := cmd.Flags().GetStringArray("skill")
	for _, s := range skills {
		skill := parseSkillFlag(s)
		if skill.Level != "" {
			if _, err := matching.ParseLevel(skill.Level); err != nil {
				return nil, err
			}
		}
		profile.Skills = append(profile.Skills, skill)
	}

	return profile, nil
}

// parseSkillFlag splits "skill[:level]". Only the last colon separates the
// level.
func parseSkillFlag(s string) directory.ProfileSkill {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return directory.ProfileSkill{Skill: strings.TrimSpace(s)}
	}
	return directory.ProfileSkill{
		Skill: strings.TrimSpace(s[:idx]),
		Level: strings.TrimSpace(s[idx+1:]),
	}
}

func promptProfile() (*directory.Profile, error) {
	profile := &directory.Profile{}

	fields := []struct {
		label    string
		target   *string
		required bool
	}{
		{label: "Name", target: &profile.User.Name, required: true},
		{label: "Bio", target: &profile.User.Bio},
		{label: "Email", target: &profile.User.Email},
		{label: "Phone", target: &profile.User.Phone},
	}

	for _, field := range fields {
		prompt := promptui.Prompt{Label: field.label}
		if field.required {
			prompt.Validate = requireValue
		}

		value, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		*field.target = value
	}

	for {
		skillPrompt := promptui.Prompt{Label: "Skill (leave empty to finish)"}
		skill, err := skillPrompt.Run()
		if err != nil {
			return nil, err
		}

		if strings.TrimSpace(skill) == "" {
			return profile, nil
		}

		levelPrompt := promptui.Select{
			Label: fmt.Sprintf("Level of %s", strings.TrimSpace(skill)),
			Items: profileLevels,
		}
		_, level, err := levelPrompt.Run()
		if err != nil {
			return nil, err
		}

		profile.Skills = append(profile.Skills, directory.ProfileSkill{Skill: skill, Level: level})
	}
}

func requireValue(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}
