package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-kbshell/internal/session"
)

// newDevTokenCmd mints a session token for local development, where no
// auth backend is running to issue one.
func newDevTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Print a signed auth_token cookie value for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.IsProduction() {
				return errors.New("dev-token is disabled in production")
			}
			token, err := session.NewValidator(a.cfg.JWTSecretKey).Issue(subject, ttl)
			if err != nil {
				return errors.Wrap(err, "issuing token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
