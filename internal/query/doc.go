// Package query is a small keyed query cache for read-only fetches.
//
// A Client owns cached results and the set of in-flight calls. For a given Key at most
// one fetch runs at a time: concurrent requests join the running call and receive its
// result. Failed fetches are retried inside that call, so joiners never trigger extra
// attempts.
//
// Consumers either call Fetch directly or hold an Observer, which exposes the current
// Result (idle, loading, success or error) and a change signal. An Observer can switch
// keys while keeping the previous key's data visible until the new one resolves.
package query
