package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logutil "github.com/spigell/skillmesh/internal/logger"
)

const defaultTopSkills = 5

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Show directory totals and the most common skills",
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

		snapshot, err := loadSnapshot(config, logger)
		if err != nil {
			logger.Fatal("loading directory", zap.Error(err))
		}

		top, _ := cmd.Flags().GetInt("top")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "total users: %d\n", snapshot.Len())
		for _, skill := range snapshot.TopSkills(top) {
			fmt.Fprintf(out, "%-20s %d\n", skill.Skill, skill.Count)
		}
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)

	skillsCmd.Flags().Int("top", defaultTopSkills, "number of skills to show (0 for all)")
}
