package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/circleci-client/cmd/cci/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cci",
	Short: "CircleCI CLI",
	Long: `A command-line interface for interacting with the CircleCI API.

This CLI provides access to CircleCI resources across the v1.1 and v2 APIs,
including projects, pipelines, workflows, jobs, builds, insights, contexts,
and schedules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.cci.yml)")
	rootCmd.PersistentFlags().StringP("api-url", "a", "", "API endpoint URL (default is https://circleci.com/api)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "CircleCI API token")
	rootCmd.PersistentFlags().String("vcs", "github", "default VCS provider for org/repo arguments")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("vcs", rootCmd.PersistentFlags().Lookup("vcs"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewMeCommand())
	rootCmd.AddCommand(commands.NewProjectsCommand())
	rootCmd.AddCommand(commands.NewBuildsCommand())
	rootCmd.AddCommand(commands.NewPipelinesCommand())
	rootCmd.AddCommand(commands.NewWorkflowsCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewInsightsCommand())
	rootCmd.AddCommand(commands.NewContextsCommand())
	rootCmd.AddCommand(commands.NewSchedulesCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.cci.yml
		viper.SetConfigFile(filepath.Join(home, ".cci.yml"))
		viper.SetConfigType("yml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("CCI")
	viper.AutomaticEnv()

	// The conventional CircleCI variables work alongside CCI_* ones
	_ = viper.BindEnv("token", "CCI_TOKEN", "CIRCLE_TOKEN")
	_ = viper.BindEnv("api_url", "CCI_API_URL", "CIRCLE_API_URL")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
