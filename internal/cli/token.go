package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hookrelay-systems/hookrelay/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Capability token management",
	Long:  "Mint and inspect the bearer tokens that guard the relay's query endpoints",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a capability token",
	Long: `Mint a signed capability token.

A tenant token is bound to a single host and can query and delete only
that host's captures. An admin token can query and delete across every
tenant.

Examples:
  # Tenant token for one store
  relayctl token mint --host shop1.example

  # Administrator token
  relayctl token mint --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		admin, _ := cmd.Flags().GetBool("admin")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if !admin && host == "" {
			return fmt.Errorf("either --host or --admin is required")
		}

		roles := []string{auth.RoleTenant}
		if admin {
			roles = []string{auth.RoleAdmin}
		}

		if ttl == 0 {
			ttl = cfg.Auth.TokenTTL
		}
		if ttl == 0 {
			ttl = 24 * time.Hour
		}

		tokens := auth.NewTokenGenerator(signingSecret(), issuer(), ttl)
		token, err := tokens.Generate(host, roles)
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		result := map[string]any{
			"token":      token,
			"roles":      roles,
			"expires_at": time.Now().Add(ttl).Format(time.RFC3339),
		}
		if host != "" {
			result["host"] = host
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		return write(result, outputFormat)
	},
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect [token]",
	Short: "Validate a token and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := auth.NewTokenGenerator(signingSecret(), issuer(), 0)
		claims, err := tokens.Validate(args[0])
		if err != nil {
			return fmt.Errorf("token is not valid: %w", err)
		}

		result := map[string]any{
			"host":   claims.Host,
			"roles":  claims.Roles,
			"issuer": claims.Issuer,
		}
		if claims.ExpiresAt != nil {
			result["expires_at"] = claims.ExpiresAt.Format(time.RFC3339)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		return write(result, outputFormat)
	},
}

func signingSecret() string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	fmt.Fprintln(os.Stderr, "Warning: auth.jwt_secret not set, using insecure development secret")
	return auth.DevelopmentSecret
}

func issuer() string {
	if cfg.Auth.Issuer != "" {
		return cfg.Auth.Issuer
	}
	return "hookrelay"
}

func write(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
}

func init() {
	tokenMintCmd.Flags().String("host", "", "tenant host the token is bound to")
	tokenMintCmd.Flags().Bool("admin", false, "mint an administrator token")
	tokenMintCmd.Flags().Duration("ttl", 0, "token lifetime (default: auth.token_ttl)")

	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenInspectCmd)
	rootCmd.AddCommand(tokenCmd)
}
