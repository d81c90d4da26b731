package cmd

import (
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/config"
	"github.com/andrelcunha/otterwatch/web/middleware"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for the web API",
	Long:  `Signs an HS256 token with OTTERWATCH_JWT_SECRET for the protected /api routes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig(version)
		token, err := middleware.IssueToken(cfg.JwtSecret, tokenSubject, tokenTTL)
		if err != nil {
			return fmt.Errorf("cannot issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "otterwatch", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
