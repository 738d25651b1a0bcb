// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
// Config values may carry `vault:<mount/path>#<key>` references instead
// of literal secrets: the database password and the privileged-route
// token both live in KV-v2.  This wrapper resolves such references,
// caches results per key, and keeps the token renewed in the
// background.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx)              // during boot, optional.
//  2. val, err := cli.Resolve(ctx, cfgValue)  // pass-through for
//     non-reference values.
//
// Environment expectations: VAULT_ADDR and VAULT_TOKEN, per the SDK
// defaults.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// RefPrefix marks a config value as a Vault reference.
const RefPrefix = "vault:"

const cacheTTL = 5 * time.Minute

// Client is safe for concurrent use.  Create once at startup.  A nil
// *Client resolves only literal values.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // "path#key" → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client and starts background token renewal.
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{api: apiCli, cache: make(map[string]cached)}
	go c.renewLoop(ctx)
	return c, nil
}

// Resolve returns val unchanged unless it is a `vault:` reference, in
// which case the referenced KV-v2 key is fetched.  A nil Client
// rejects references outright so misconfiguration fails at boot, not
// at request time.
func (c *Client) Resolve(ctx context.Context, val string) (string, error) {
	if !strings.HasPrefix(val, RefPrefix) {
		return val, nil
	}
	if c == nil {
		return "", fmt.Errorf("vault reference %q but no Vault client configured", val)
	}

	ref := strings.TrimPrefix(val, RefPrefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q, want vault:<path>#<key>", val)
	}
	return c.getKV(ctx, path, key)
}

// getKV fetches one key from a KV-v2 secret, serving cached copies
// within the TTL.
func (c *Client) getKV(ctx context.Context, secretPath, key string) (string, error) {
	canonical := secretPath + "#" + key

	c.cacheMu.RLock()
	if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
		c.cacheMu.RUnlock()
		return cv.val, nil
	}
	c.cacheMu.RUnlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", errors.New("vault value at " + canonical + " is not a string")
	}

	c.cacheMu.Lock()
	c.cache[canonical] = cached{val: sval, exp: time.Now().Add(cacheTTL)}
	c.cacheMu.Unlock()
	return sval, nil
}

// renewLoop keeps the token alive for long-running processes.  Renewal
// failures are logged and retried with a flat backoff; a non-renewable
// token degrades to hourly probes.
func (c *Client) renewLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sec, err := c.api.Auth().Token().RenewSelf(0)
		switch {
		case err != nil:
			zap.S().Warnw("vault token renew failed", "err", err)
			sleep(ctx, 30*time.Second)
		case sec == nil || sec.Auth == nil || !sec.Auth.Renewable:
			sleep(ctx, time.Hour)
		default:
			ttl := time.Duration(sec.Auth.LeaseDuration) * time.Second
			if ttl < time.Minute {
				ttl = time.Minute
			}
			sleep(ctx, ttl/2)
		}
	}
}

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
