// Package identity is the credential store for StyleHub clients.
//
// A Client is identified by a storage-assigned numeric id and logs in with a
// login key: a phone number or an email address. Login keys are unique; the
// Postgres store relies on unique constraints for that so concurrent
// registrations cannot race past each other.
//
// The package holds no interactive logic. Password hashing lives in
// security/password and token handling in internal/auth/session.
package identity
