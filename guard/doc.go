// Package guard evaluates route transitions for the console. It is invoked
// before every navigation, waits for session initialization, and enforces
// the path-based authentication and role rules: login entry points redirect
// authenticated users to their dashboard, the admin and worker areas demand
// the matching capability, and per-route metadata covers everything else.
//
// Decisions are data. The guard never navigates; the hosting router applies
// the returned [Decision]. The one side effect the guard owns is the forced
// logout when an authenticated session enters a privileged area with the
// wrong role — redirecting without logging out would bounce the session
// between the area and a login page that immediately re-authenticates it.
package guard
