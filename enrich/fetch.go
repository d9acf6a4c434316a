package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBundleURL points at the enterprise ATT&CK STIX bundle published
// in the MITRE CTI repository.
const DefaultBundleURL = "https://raw.githubusercontent.com/mitre/cti/master/enterprise-attack/enterprise-attack.json"

const fetchMaxAttempts = 3

// fetchBaseDelay is the base backoff between download attempts. Tests
// override this to avoid real sleeps.
var fetchBaseDelay = 2 * time.Second

// FetchBundle downloads a STIX bundle from url, retrying transient
// failures with exponential backoff. A nil client falls back to
// http.DefaultClient.
func FetchBundle(ctx context.Context, client *http.Client, url string) (*Bundle, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultBundleURL
	}

	var bundle *Bundle
	err := RetryWithBackoff(ctx, func() error {
		b, err := fetchBundleOnce(ctx, client, url)
		if err != nil {
			return err
		}
		bundle = b
		return nil
	}, fetchMaxAttempts, fetchBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ATT&CK bundle from %s: %w", url, err)
	}
	return bundle, nil
}

func fetchBundleOnce(ctx context.Context, client *http.Client, url string) (*Bundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var bundle Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &bundle, nil
}
