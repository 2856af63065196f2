package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration persisted in ~/.cci.yml.
type Config struct {
	// APIURL is the API endpoint; empty selects the public endpoint.
	APIURL string `json:"api_url,omitempty"  yaml:"api_url,omitempty"`
	// Token is the CircleCI API token.
	Token string `json:"token,omitempty"    yaml:"token,omitempty"`
	// VCS is the default VCS provider for org/repo arguments.
	VCS string `json:"vcs,omitempty"      yaml:"vcs,omitempty"`
	// Output is the default output format.
	Output string `json:"output,omitempty"   yaml:"output,omitempty"`
	// NoColor disables colored output.
	NoColor bool `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// Settable configuration keys.
const (
	configKeyAPIURL  = "api_url"
	configKeyToken   = "token"
	configKeyVCS     = "vcs"
	configKeyOutput  = "output"
	configKeyNoColor = "no_color"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and modify the persisted CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			if masked.Token != "" {
				masked.Token = constants.MaskedSecret
			}

			return renderOutput(masked, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Key", "Value")
				_ = table.Append(configKeyAPIURL, orNA(masked.APIURL))
				_ = table.Append(configKeyToken, orNA(masked.Token))
				_ = table.Append(configKeyVCS, orNA(masked.VCS))
				_ = table.Append(configKeyOutput, orNA(masked.Output))
				_ = table.Append(configKeyNoColor, strconv.FormatBool(masked.NoColor))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := applyConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if key == configKeyToken {
				value = constants.MaskedSecret
			}

			fmt.Printf("Set %s to %q\n", key, value)

			return nil
		},
	}
}

func applyConfigValue(config *Config, key, value string) error {
	switch key {
	case configKeyAPIURL:
		config.APIURL = value
	case configKeyToken:
		config.Token = value
	case configKeyVCS:
		config.VCS = value
	case configKeyOutput:
		if value != constants.FormatTable && value != constants.FormatJSON && value != constants.FormatYAML {
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, value)
		}

		config.Output = value
	case configKeyNoColor:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}

		config.NoColor = parsed
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			config := loadConfig()

			switch key {
			case configKeyAPIURL:
				config.APIURL = ""
			case configKeyVCS:
				config.VCS = ""
			case configKeyOutput:
				config.Output = ""
			case configKeyNoColor:
				config.NoColor = false
			case configKeyToken:
				// Deleting credentials goes through logout so it stays
				// deliberate.
				return constants.ErrTokenCannotUnset
			default:
				return fmt.Errorf("%w: %q", constants.ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Unset %s\n", key)

			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Long:  "Display the path of the configuration file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			fmt.Println(path)

			return nil
		},
	}
}

// configFilePath resolves the configuration file location, honoring the
// --config flag.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	if configFile := viper.GetString("config"); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".cci.yml"), nil
}

// loadConfig builds the persisted configuration from viper's resolved state.
func loadConfig() *Config {
	return &Config{
		APIURL:  viper.GetString(configKeyAPIURL),
		Token:   viper.GetString(configKeyToken),
		VCS:     viper.GetString(configKeyVCS),
		Output:  viper.GetString(configKeyOutput),
		NoColor: viper.GetBool(configKeyNoColor),
	}
}

// saveConfigStruct writes the configuration to the config file.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
