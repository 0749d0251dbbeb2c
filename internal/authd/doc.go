// Package authd is a development auth authority for spicefront.
//
// # Overview
//
// authd implements the HTTP contract the console's authority client expects:
//
//   - POST /login: verify credentials, issue a session cookie and body token
//   - GET /me: resolve the identity behind a cookie or bearer credential
//   - POST /logout: invalidate the session, always safe to call
//   - POST /change-password: rotate the password hash for the current user
//   - GET /health: liveness check
//
// It exists so the console can be developed and integration-tested without
// the production backend. Users and sessions live in SQLite; tokens are
// HS256 JWTs carrying the user and session IDs.
//
// # Credential Acceptance
//
// Requests may authenticate with either the session cookie or an
// Authorization bearer header. Both carry the same token. A token that
// verifies but whose session row has been deleted is rejected, so logout
// is effective immediately.
package authd
