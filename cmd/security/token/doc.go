// Package token derives storage-safe fingerprints of bearer credentials.
//
// Raw refresh tokens never leave the process: anything that needs to remember a
// token (the logout denylist) keys on an HMAC-SHA256 fingerprint instead.
package token
