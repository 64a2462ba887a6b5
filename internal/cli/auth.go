package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/browser"
	"github.com/tessro/verse/internal/spotify/auth"
)

const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing Spotify OAuth authentication.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Opens a browser to authenticate with Spotify using OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify OAuth tokens from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the current Spotify authentication status.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if err := requireClientID(); err != nil {
		return err
	}

	pkce, err := auth.NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	conf := oauthConfig()
	callbackServer, err := auth.NewCallbackServer(conf.RedirectURL, pkce.State)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	authURL := auth.AuthURL(conf, pkce)

	fmt.Fprintln(os.Stderr, "Opening browser for Spotify authentication...")
	if err := browser.Open(authURL); err != nil {
		logger.Debug("could not open browser", "err", err)
		fmt.Fprintf(os.Stderr, "Could not open browser automatically.\n")
		fmt.Fprintf(os.Stderr, "Please open this URL in your browser:\n\n%s\n\n", authURL)
	}

	fmt.Fprintln(os.Stderr, "Waiting for authentication...")
	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	code, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	token, err := auth.ExchangeCode(ctx, conf, code, pkce.Verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	storage, err := newTokenStorage()
	if err != nil {
		return err
	}
	if err := storage.Set(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	user, err := newClient(storage).GetCurrentUser(ctx)
	if err != nil {
		logger.Debug("could not fetch profile after login", "err", err)
		fmt.Println("Authentication successful! Token stored.")
		return nil
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status":       "authenticated",
			"user_id":      user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"product":      user.Product,
		})
	}

	fmt.Printf("Successfully authenticated as %s (%s)\n", user.DisplayName, user.Email)
	if !user.IsPremium() {
		fmt.Println("Note: transferring playback requires Spotify Premium.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := newTokenStorage()
	if err != nil {
		return err
	}

	if !storage.Exists() {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "not_authenticated"})
		}
		fmt.Println("Not authenticated with Spotify.")
		return nil
	}

	if err := storage.Clear(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "logged_out"})
	}
	fmt.Println("Logged out of Spotify.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := newTokenStorage()
	if err != nil {
		return err
	}

	token, err := storage.Get()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token == nil {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"authenticated": false,
			})
		}
		fmt.Println("Not authenticated with Spotify.")
		fmt.Println("Run 'verse auth login' to authenticate.")
		return nil
	}

	// Without a client ID the token cannot be refreshed or checked
	if cfg.Spotify.ClientID == "" {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"authenticated": true,
				"expired":       auth.IsExpired(token),
				"expires_at":    token.Expiry,
			})
		}
		if auth.IsExpired(token) {
			fmt.Println("Authenticated but token expired.")
		} else {
			fmt.Println("Authenticated with Spotify.")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	user, err := newClient(storage).GetCurrentUser(ctx)
	if err != nil {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"authenticated": true,
				"expired":       true,
				"error":         err.Error(),
			})
		}
		fmt.Printf("Token may be expired or invalid: %v\n", err)
		fmt.Println("Run 'verse auth login' to re-authenticate.")
		return nil
	}

	// The client may have refreshed the token
	if refreshed, err := storage.Get(); err == nil && refreshed != nil {
		token = refreshed
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"authenticated": true,
			"expired":       false,
			"user_id":       user.ID,
			"display_name":  user.DisplayName,
			"email":         user.Email,
			"product":       user.Product,
			"expires_at":    token.Expiry,
		})
	}

	fmt.Printf("Authenticated as: %s (%s)\n", user.DisplayName, user.Email)
	fmt.Printf("Account type: %s\n", user.Product)
	if !token.Expiry.IsZero() {
		fmt.Printf("Token expires: %s (%s)\n", token.Expiry.Format(time.RFC3339), humanize.Time(token.Expiry))
	}
	return nil
}
