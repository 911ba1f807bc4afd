// Package iam groups the identity and access pieces of gatekeeper.
//
// # Request pipeline
//
// Every protected route runs the same stages in order, each either
// continuing the fiber chain or returning an error for the global
// ErrorHandler:
//
//	Verifier.Middleware   session token -> kernel.Assertion (optional)
//	Middleware.Protect    assertion -> local user.User via UserSync
//	Middleware.RequireRole / RequireRecentAuth
//	handler
//
// # Packages
//
//   - auth: token verification, user sync, role and recency guards
//   - user: the local user record and its repository (userinfra: postgres, memory)
//   - identity: the identity provider client (identityinfra: HTTP, redis cache)
//   - profile: profile reads, the provider/store dual write, logout, admin listing
//   - iamcontainer: wires all of the above from shared infrastructure
//
// # Sync policies
//
// AUTH_SYNC_POLICY=lazy creates the local record on first sight and never
// refreshes it. AUTH_SYNC_POLICY=always refreshes name, email and avatar
// from the provider on every authenticated request. Both use a single
// upsert, so concurrent first requests for one subject create one row.
package iam
