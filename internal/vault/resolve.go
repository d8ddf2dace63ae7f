// internal/vault/resolve.go
//
// `vault:` reference resolution for configuration values.
//
// Context
// -------
// Config files may carry indirections instead of secrets:
//
//	password: vault:secret/formrelayer/db#password
//
// Resolve turns such a reference into the plain value via GetKV; anything
// not starting with the prefix passes through untouched, so callers can run
// every secret-bearing config field through it unconditionally.  Resolved
// values are cached for an hour to keep boot and reload cheap.
package vault

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Prefix marks a config value as a Vault reference.
const Prefix = "vault:"

const resolveTTL = time.Hour

// Resolve expands one possibly-indirect config value.  A nil client with a
// real reference is a configuration error.
func (c *Client) Resolve(ctx context.Context, val string) (string, error) {
	if !strings.HasPrefix(val, Prefix) {
		return val, nil
	}
	if c == nil {
		return "", fmt.Errorf("vault reference %q but no Vault client configured", val)
	}

	ref := strings.TrimPrefix(val, Prefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q, want vault:<path>#<key>", val)
	}
	return c.GetKV(ctx, path, key, resolveTTL)
}

// ResolveAll expands the given values in place.  Used at boot to run every
// secret-bearing config field through Resolve in one call.
func (c *Client) ResolveAll(ctx context.Context, vals ...*string) error {
	for _, v := range vals {
		out, err := c.Resolve(ctx, *v)
		if err != nil {
			return err
		}
		*v = out
	}
	return nil
}
