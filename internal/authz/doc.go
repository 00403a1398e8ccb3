// Package authz implements the authorization core of the hostel
// administration backend: a static role capability table, per-user
// override diffs, a pure effective-authz builder, request middleware,
// and a staged-rollout enforcement controller.
//
// # Model
//
// Two kinds of keys gate access:
//
//   - Route keys (route.<role-area>.<feature>) gate whether a whole feature
//     area is reachable at all.
//   - Capability keys (cap.<domain>.<action>) gate individual actions
//     within an area.
//
// Both kinds live in a closed catalog; keys outside the catalog never
// match. Each role has a default route set and capability set. A per-user
// override records grants and revokes as a diff against those defaults —
// an explicit revoke always wins, even over a role default or a grant in
// the same override.
//
// # Flow
//
//	Request -> Session Middleware -> Access-Check Middleware -> Handler
//	               |                        |
//	        resolve principal,       membership test against
//	        cache effective authz    the enforcement controller
//
// The session layer (internal/auth) resolves the principal and attaches
// the resolved effective authz to the request context via WithPrincipal.
// The access-check middleware in this package performs pure in-memory set
// membership tests; no I/O happens on the check path.
//
// # Staged rollout
//
// The enforcement controller decides whether a failed membership test
// actually blocks the request:
//
//   - off: never block; failed checks pass silently.
//   - observe: block only keys on the configured allow-lists (wildcard "*"
//     means all); everything else logs a would-have-denied diagnostic and
//     passes.
//   - enforce: always block.
//
// This allows rolling out new checks shadow-first, then key by key, then
// globally, without redeploying code.
package authz
