package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/tutorlog-backend/internal/app"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

// newTokenCommand mints an access token for local testing against the API.
func newTokenCommand() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", userFlag, err)
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			auth := services.NewAuthService(logger.Nop(), cfg.Auth.JWTSecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
			tok, err := auth.IssueAccessToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User id (uuid) to put in the token subject")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
