// Package session owns the operator's session state for spicefront.
//
// # Overview
//
// The Manager is the single writer of session state. It talks to the remote
// auth authority through a narrow interface and keeps an in-memory snapshot
// that the rest of the console reads:
//
//   - Initialize: resolves the stored credential at startup
//   - Login: authenticates and persists the fallback token
//   - Logout: ends the session locally first, then remotely
//   - Current: returns a read-only snapshot
//
// # Resolution States
//
// A snapshot is in one of three states:
//
//   - unresolved: the initial resolution has not finished yet
//   - resolved, absent: no session (Identity == nil)
//   - resolved, present: authenticated (Identity != nil)
//
// Renderers must not redirect while unresolved; only a resolved absence is
// grounds for sending the operator to the login page.
//
// # Ordering
//
// Remote calls can complete out of order. The manager tracks a monotonic
// epoch that every state mutation bumps; a Login or Initialize response
// whose captured epoch no longer matches the current one is discarded. A
// logout issued mid-flight always wins, and a slow startup resolution can
// never clobber a login that completed after it started.
//
// # Credentials
//
// The credential is dual: the authority sets an HTTP cookie on its responses
// (relayed to the browser by the web layer, carried outbound by the client's
// cookie jar) and returns the same token in the login body, which the manager
// persists through a credstore.Store as a fallback. Presence of a stored
// token is only a hint; validity is established by resolution alone.
package session
