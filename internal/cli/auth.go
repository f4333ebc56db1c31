package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parra-inc/parra-cli/internal/api"
	"github.com/parra-inc/parra-cli/internal/auth"
	"github.com/parra-inc/parra-cli/internal/config"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  `Manage authentication for the Parra platform.`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

// newSession builds the session every command shares: keyring-backed storage
// with analytics wired in as the auth observer.
func newSession(noBrowser bool) *auth.Session {
	store := auth.NewKeyringStore()
	manager := auth.NewManager(store, &auth.Config{NoBrowser: noBrowser})
	session := auth.NewSession(manager)

	reporter := api.NewReporter(session, "")
	manager.SetObserver(api.NewAuthObserver(reporter))

	return session
}

func newAuthLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the Parra platform",
		Long: `Authenticate with the Parra platform using the OAuth device flow.

A browser window opens for you to confirm the sign-in. If you are already
logged in, the stored credential is reused without any prompts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newSession(noBrowser)

			cred, isNew, err := session.EnsureAuthenticated(cmd.Context())
			if err != nil {
				if auth.IsKind(err, auth.KindCancelled) {
					Warn("Login cancelled")
					return nil
				}
				return fmt.Errorf("login failed: %w", err)
			}

			name := identityName(cred)
			if isNew {
				rememberUser(cred)
				Success("Successfully logged in as %s!", name)
			} else {
				Success("Already logged in as %s", name)
				fmt.Printf("Run %s first if you want to switch accounts\n", color.CyanString("parra auth logout"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open the browser automatically")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the Parra platform",
		Long:  `Remove the stored authentication credential.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newSession(false)

			existed, err := session.Logout()
			if err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			if cfg, err := config.Load(); err == nil {
				_ = cfg.ClearCurrentUser()
			}

			if !existed {
				Warn("Not logged in")
				return nil
			}

			Success("Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	var showToken bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  `Display the current authentication status and token validity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newSession(false)

			cred, err := session.Stored()
			if err != nil {
				if errors.Is(err, auth.ErrNoCredential) {
					if showToken {
						return fmt.Errorf("not logged in")
					}
					fmt.Println("Not logged in")
					fmt.Printf("Run %s to authenticate\n", color.CyanString("parra auth login"))
					return nil
				}
				return fmt.Errorf("failed to read credential: %w", err)
			}

			// For scripts: print only the token.
			if showToken {
				fmt.Print(cred.Token)
				return nil
			}

			Success("Logged in as %s", identityName(cred))

			remaining := time.Until(cred.ExpiresAt())
			if remaining > 0 {
				fmt.Printf("Access token valid for %dh %dm\n",
					int(remaining.Hours()), int(remaining.Minutes())%60)
			} else {
				Warn("Access token expired (will refresh on next use)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showToken, "show-token", false, "Output only the access token (for use in scripts)")

	return cmd
}

// identityName extracts the best display name from the access token.
func identityName(cred *auth.Credential) string {
	identity, err := auth.ExtractIdentity(cred.Token)
	if err != nil || identity.DisplayName() == "" {
		return "unknown user"
	}
	return identity.DisplayName()
}

// rememberUser persists the logged-in identity for later status output.
func rememberUser(cred *auth.Credential) {
	identity, err := auth.ExtractIdentity(cred.Token)
	if err != nil {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		return
	}
	_ = cfg.SetCurrentUser(&config.UserInfo{
		UserID:    identity.Subject,
		Name:      identity.Name,
		Email:     identity.Email,
		UpdatedAt: time.Now().Format(time.RFC3339),
	})
}
