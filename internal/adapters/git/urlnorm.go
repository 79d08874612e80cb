package git

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// NormalizeURL converts a possibly SCP-style repository address
// ("user@host:path") into a canonical URI. Hosts are lower-cased, paths are
// cleaned of duplicate slashes, and scheme-less addresses default to the
// secure ssh transport. Local filesystem paths are returned unchanged.
//
// The function is pure and idempotent: normalizing an already-canonical URI
// returns it as-is.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("repository address cannot be empty")
	}

	// Local working copies (used heavily for file-based remotes) carry no
	// scheme and must not be rewritten into ssh URLs.
	if filepath.IsAbs(s) || strings.HasPrefix(s, ".") {
		return s, nil
	}

	if !strings.Contains(s, "://") {
		// Assume git@host:repo shorthand, reshape so net/url understands it.
		if i := strings.Index(s, ":"); i > 0 && strings.Contains(s[:i], "@") {
			s = s[:i] + "/" + s[i+1:]
		}
		s = "ssh://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid repository address %q: %w", raw, err)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path != "" {
		u.Path = path.Clean(u.Path)
	}

	return u.String(), nil
}
