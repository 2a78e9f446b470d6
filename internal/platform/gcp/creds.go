package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// explicitCredentials reads GOOGLE_APPLICATION_CREDENTIALS_JSON first, then
// GOOGLE_APPLICATION_CREDENTIALS. Either may hold inline JSON or a path.
func explicitCredentials() string {
	if v := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
}

// ClientOptionsFromEnv returns nil when no explicit credentials are set, so
// clients fall back to application default credentials. Scopes only apply
// alongside explicit credentials.
func ClientOptionsFromEnv(scopes ...string) []option.ClientOption {
	creds := explicitCredentials()
	if creds == "" {
		return nil
	}
	var opts []option.ClientOption
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}
	return opts
}

func HasCredentials() bool {
	return explicitCredentials() != ""
}
