// Package password hashes and verifies client passwords.
//
// Two encodings are supported: Argon2id in a PHC-like string (the default) and
// bcrypt in its standard modular crypt format. Hash uses the configured
// algorithm and work factor with a fresh random salt per call; Verify reads the
// algorithm and parameters back from the encoded hash and compares in constant
// time.
//
// Encoded hashes are treated as untrusted input: Verify refuses malformed
// strings and parameters far above the configured cost instead of computing them.
package password
