// Package storage is the persisted mirror of the session: a key-value string
// store holding the access token, the refresh token, and the serialized user
// profile. It is a last-write-wins cache with no transactional guarantees;
// concurrent writers (the session store and the gateway's inline refresh)
// are allowed to race and the last write is retained.
//
// Three backends are provided: [Memory] for tests and ephemeral sessions,
// [File] as the durable single-host mirror, and [Redis] for hosts that share
// the mirror across processes.
package storage
