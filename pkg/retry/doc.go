// Package retry provides backoff strategies and retry logic for transient
// failures when talking to the MangaDex API.
//
// The Transport type mounts a retry Policy on a single host, mirroring a
// urllib3 Retry adapter: up to four retries, a status forcelist of HTTP 500,
// retries on network errors, and a 0.3 backoff factor giving delays of
// 0s, 0.6s, 1.2s and 2.4s. Policy.AttemptTimeout bounds each attempt
// separately.
//
// Basic usage:
//
//	transport := retry.NewTransport(http.DefaultTransport, "mangadex.org",
//		retry.DefaultPolicy(), logger.GetLogger())
//	client := &http.Client{Transport: transport}
//
//	// Retrying an arbitrary operation
//	err := retry.Do(func() error {
//		return doSomething()
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultFactorBackoff(),
//	})
package retry
