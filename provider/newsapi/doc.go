// Package newsapi implements provider.Provider against the NewsAPI v2 HTTP API.
//
// Calls return immediately and complete on a separate goroutine. A weighted
// semaphore sized by provider.Config.MaxInFlight bounds the number of
// requests on the wire, independent of how many calls are outstanding.
//
// Failures surface through the failure continuation as errors; provider
// error payloads are decoded into *APIError.
package newsapi
