// Package gateway is the single point through which every Auth API call
// passes: an http.RoundTripper that injects the persisted bearer credential
// on the way out and performs exactly one refresh-and-retry cycle when a
// response comes back 401.
//
// The recovery cycle deliberately bypasses the session store and calls the
// token-refresh endpoint on a bare client, mirroring the store's own refresh
// path without creating a dependency cycle. The two refresh paths are not
// deduplicated across components: any valid access token is interchangeable
// and the last persisted write wins. Within the gateway, [Config] offers an
// optional single-flight guard and a refresh throttle as bounded-storm
// protection.
//
// When the refresh itself fails, the gateway clears the entire persisted
// mirror and invokes the restart hook: the session is unrecoverable and the
// hosting application is expected to discard all in-memory state, the moral
// equivalent of a hard page reload.
package gateway
