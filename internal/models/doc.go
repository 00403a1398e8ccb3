// Package models defines the shared data structures for the hostel
// administration backend: user records, role constants, and the
// standardized API response envelope.
//
// Models in this package are pure data — no business logic, no I/O.
// The authorization semantics that interpret these structures live in
// internal/authz.
package models
