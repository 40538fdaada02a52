package gcs

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/DevStdio379/settisfy-web/pkg/config"
)

const storageScope = "https://www.googleapis.com/auth/devstorage.read_write"

// tokenSourceFor resolves credentials in the same order as the bigquery client:
// inline JSON first, then a credentials file, then application default credentials.
func tokenSourceFor(ctx context.Context, gcp config.GCPConfig) (oauth2.TokenSource, error) {
	raw := []byte(gcp.CredentialsJSON)
	if len(raw) == 0 && gcp.ApplicationCredentials != "" {
		b, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		raw = b
	}

	if len(raw) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storageScope)
		if err != nil {
			return nil, fmt.Errorf("default gcs credentials: %w", err)
		}
		return ts, nil
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, storageScope)
	if err != nil {
		return nil, fmt.Errorf("parsing gcs credentials: %w", err)
	}
	return oauth2.ReuseTokenSource(nil, creds.TokenSource), nil
}
