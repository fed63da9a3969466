package sources

import (
	"os"
	"regexp"
	"strings"
)

var envUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// LookupEnv matches os.LookupEnv and is swapped out in tests.
type LookupEnv func(key string) (string, bool)

// ResolveToken picks the GitHub token for owner/repo. The explicit token
// wins, then GITHUB_TOKEN_<HOST>_<OWNER>_<REPO>, GITHUB_TOKEN_<OWNER>_<REPO>,
// GITHUB_TOKEN and GH_TOKEN. An empty result means anonymous access.
func ResolveToken(explicit, host, owner, repo string, lookup LookupEnv) string {
	if token := strings.TrimSpace(explicit); token != "" {
		return token
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if host == "" {
		host = "github.com"
	}

	candidates := []string{
		"GITHUB_TOKEN_" + envKey(host) + "_" + envKey(owner) + "_" + envKey(repo),
		"GITHUB_TOKEN_" + envKey(owner) + "_" + envKey(repo),
		"GITHUB_TOKEN",
		"GH_TOKEN",
	}
	for _, key := range candidates {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func envKey(value string) string {
	return strings.ToUpper(strings.Trim(envUnsafe.ReplaceAllString(value, "_"), "_"))
}
