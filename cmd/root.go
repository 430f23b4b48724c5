package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "skillmesh"
)

type Config struct {
	Directory   string           `mapstructure:"directory"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	Extraction  ExtractionConfig `mapstructure:"extraction"`
	Scoring     ScoringConfig    `mapstructure:"scoring"`
	Results     ResultsConfig    `mapstructure:"results"`
}

type ExtractionConfig struct {
	Policy     string   `mapstructure:"policy"`
	Vocabulary []string `mapstructure:"vocabulary"`
}

type ScoringConfig struct {
	Mode          string `mapstructure:"mode"`
	Workers       int    `mapstructure:"workers"`
	PartitionSize int    `mapstructure:"partition-size"`
}

type ResultsConfig struct {
	MinimumScore int      `mapstructure:"minimum-score"`
	Limit        int      `mapstructure:"limit"`
	ExcludeUsers []string `mapstructure:"exclude-users"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillmesh finds people whose skills match a help request",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("directory", "SKILLMESH_DIRECTORY"); err != nil {
		log.Fatalf("binding SKILLMESH_DIRECTORY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillmesh.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("directory", "", "directory file with users and skills (YAML or JSON)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("directory", rootCmd.PersistentFlags().Lookup("directory"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config file must exist; the default one is optional since
	// every key can come from flags.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
