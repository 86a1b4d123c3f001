package main

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/livefeed/internal/adminauth"
	"github.com/dmitrymomot/livefeed/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin access token",
		Long: `Issue an access token for the /admin routes.

Streams accept it as ?access_token=<token>, the REST API as
"Authorization: Bearer <token>".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tokens, err := jwt.NewFromString(cfg.Auth.Secret, jwt.WithIssuer(cfg.Auth.Issuer))
			if err != nil {
				return err
			}
			token, err := tokens.Generate(jwt.Claims{
				RegisteredClaims: gojwt.RegisteredClaims{Subject: subject},
				Role:             role,
			}, ttl)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually the admin email")
	cmd.Flags().StringVar(&role, "role", adminauth.RoleAdmin, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := adminauth.HashPassword(args[0])
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
}
