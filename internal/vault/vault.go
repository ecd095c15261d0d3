// internal/vault/vault.go
//
// Vault client wrapper for ServerPlace.
//
// Context
// -------
//   - Concurrency-safe singleton around the HashiCorp Vault Go SDK.
//   - KV-v2 reads with per-key caching, plus background token renewal.
//   - Config values written as `vault:<path>#<key>` are resolved through
//     this client during config load; nothing else in the app ever sees
//     a Vault URI.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Infof)       // during boot.
//  2. pw,  err := cli.GetKV(ctx, path, key, ttl)      // anywhere.
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
)

// Client is safe for concurrent use.  Create once at startup.  The zero
// value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal
// loop.  Expects VAULT_ADDR and VAULT_TOKEN in the environment.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

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

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result
// is cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

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
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

// Resolve expands a `vault:<path>#<key>` reference; plain strings pass
// through untouched.  Resolved values are cached for one hour.
func (c *Client) Resolve(ctx context.Context, v string) (string, error) {
	const prefix = "vault:"
	if !strings.HasPrefix(v, prefix) {
		return v, nil
	}
	ref := strings.TrimPrefix(v, prefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok {
		return "", fmt.Errorf("malformed vault reference %q (want vault:<path>#<key>)", v)
	}
	return c.GetKV(ctx, path, key, time.Hour)
}

// renewLoop keeps the token alive.  On any failure it backs off and
// probes again; a non-renewable token is left alone.
func (c *Client) renewLoop(ctx context.Context) {
	for {
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			c.logFn("vault: token renew-self failed: %v", err)
			if !sleepCtx(ctx, 30*time.Second) {
				return
			}
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.logFn("vault: token is not renewable, probing hourly")
			if !sleepCtx(ctx, time.Hour) {
				return
			}
			continue
		}

		ttl := time.Duration(sec.Auth.LeaseDuration) * time.Second
		// Renew at two-thirds of the lease.
		if !sleepCtx(ctx, ttl*2/3) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// splitMount separates the KV mount from the relative secret path,
// e.g. "secret/serverplace/smtp" → ("secret", "serverplace/smtp").
func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
