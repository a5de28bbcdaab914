// Package authcore implements the client-side session and authorization
// core of the RatePanel currency-exchange console: a session store owning
// the token lifecycle, an HTTP gateway with transparent credential renewal,
// and a navigation guard enforcing path-based authentication rules.
//
// A [Session] is constructed once per process through [Builder.Build] and
// passed by reference to the guard and to anything else that needs it; there
// is no package-level singleton. Session methods are safe for concurrent use
// and serialize internally.
//
// # Architecture boundaries
//
// authcore talks to the remote Auth API only through the authapi client, and
// all durable state lives behind the storage.Store mirror; in-memory state
// and the mirror are kept in sync on every mutation. The gateway refreshes
// credentials independently of the session store — the two refresh paths are
// intentionally not deduplicated across components, because any valid access
// token is interchangeable and the mirror is last-write-wins.
//
// # What this package must NOT do
//
//   - Validate credentials locally. The remote Auth API owns every verdict.
//   - Let a rejected network call escape a public operation: each one
//     translates failure into a result value or a state transition.
//   - Keep a session the invariant cannot prove: authenticated implies a
//     user profile and an access token, or the session resets.
package authcore
