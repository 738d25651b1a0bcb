// internal/config/secrets.go
//
// Post-load secret resolution.
//
// The DSN *template* stays in YAML so operators can tweak host, port,
// or flags without touching Vault; the *secret* portion (password,
// privileged token) is stored in Vault and injected here, keeping
// credentials out of flat files and git history.

package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/nos486/netmon/internal/vault"
)

// ResolveSecrets replaces `vault:` references in secret-bearing fields
// and substitutes the database password into the DSN's %s verb.  With
// a nil client, literal values pass through and references fail.
func ResolveSecrets(ctx context.Context, cfg *Config, cli *vault.Client) error {
	tok, err := cli.Resolve(ctx, cfg.Gate.PrivilegedToken)
	if err != nil {
		return fmt.Errorf("resolve privileged token: %w", err)
	}
	cfg.Gate.PrivilegedToken = tok

	pw, err := cli.Resolve(ctx, cfg.Database.Password)
	if err != nil {
		return fmt.Errorf("resolve database password: %w", err)
	}
	cfg.Database.Password = pw

	if strings.Contains(cfg.Database.DSN, "%s") {
		cfg.Database.DSN = fmt.Sprintf(cfg.Database.DSN, pw)
	}
	return nil
}
