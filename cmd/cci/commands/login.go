package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/circleci-client/pkg/cciclient"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiURL string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to CircleCI",
		Long:  "Store a CircleCI API token after verifying it against the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get API endpoint
			if apiURL == "" {
				apiURL = viper.GetString("api_url")
			}

			if apiURL == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Printf("API endpoint (empty for circleci.com): ")
				apiURL, _ = reader.ReadString('\n')
				apiURL = strings.TrimSpace(apiURL)
			}

			// Get token without echoing it
			if token == "" {
				token = viper.GetString("token")
			}

			if token == "" {
				fmt.Print("CircleCI API token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = strings.TrimSpace(string(byteToken))

				fmt.Println()
			}

			// Verify the token before saving anything
			ctx := context.Background()

			client, err := cciclient.NewWithToken(ctx, apiURL, token)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			user, err := client.Users().Me(ctx)
			if err != nil {
				if circleci.IsUnauthorized(err) {
					return fmt.Errorf("token was rejected by the API: %w", err)
				}

				return fmt.Errorf("failed to verify token: %w", err)
			}

			config := loadConfig()
			config.Token = token
			config.APIURL = apiURL

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			name := user.Name
			if name == "" {
				name = user.Login
			}

			fmt.Printf("Logged in as %s (%s)\n", name, user.Login)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-endpoint", "", "API endpoint to log in against")
	cmd.Flags().StringVar(&token, "with-token", "", "API token (prompted for when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of CircleCI",
		Long:  "Remove the stored API token from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if config.Token == "" {
				fmt.Println("Not logged in")

				return nil
			}

			config.Token = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
