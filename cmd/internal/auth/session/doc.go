// Package session implements StyleHub's login and bearer-token sessions.
//
// Sessions are stateless: a login issues a short-lived access token and a
// longer-lived refresh token, both HS256 JWTs bound to the client id and tagged
// with their class. Refresh rotates the pair. Logout is client-side unless the
// optional denylist is enabled, in which case the refresh token's keyed
// fingerprint is remembered until the token would have expired anyway.
//
// Every failure is an *AuthError carrying an internal Reason; use Public at the
// transport boundary so callers never learn which check failed.
package session
