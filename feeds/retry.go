package feeds

import (
	"context"
	"io"
	"net/http"
	"time"
)

// retryBaseDelay controls the base duration for exponential backoff on
// retryable HTTP responses. Tests override this to avoid real sleeps.
var retryBaseDelay = 5 * time.Second

const defaultMaxRetries = 3

// DoWithRetry executes an HTTP request and retries on HTTP 429 and 5xx
// responses with exponential backoff. The delay starts at retryBaseDelay
// and doubles each attempt.
//
// When maxRetries is 0 the default (3) is used. On each retryable
// response the body is drained and closed before sleeping. If the
// context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last response is returned so
// the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries, return the response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryBaseDelay << attempt

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
