package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "touchrec"
const keyringUser = "server-api-token"

const tokenBytes = 24

var showToken bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the server API token",
	Long: `The API token is kept in the OS keyring. While one is stored, the server
only accepts /rpc and /ws requests carrying "Authorization: Bearer <token>".`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a new API token, or print the current one with --show",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showToken {
			token, err := keyring.Get(keyringService, keyringUser)
			if err != nil {
				return fmt.Errorf("no API token stored for touchrec")
			}
			fmt.Println(token)
			return nil
		}

		raw := make([]byte, tokenBytes)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		token := hex.EncodeToString(raw)

		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store API token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Delete the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Println("no API token stored for touchrec")
			return nil
		}

		fmt.Println("API token revoked. Restart the server to accept unauthenticated requests.")
		return nil
	},
}

// storedToken returns the API token, or "" when none is stored.
func storedToken() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read API token from keyring: %w", err)
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd, authRevokeCmd)

	authTokenCmd.Flags().BoolVar(&showToken, "show", false, "print the stored token instead of generating one")
}
