// Package hash generates and verifies password hashes.
//
// PepperChain is the peppered HMAC-SHA512 chain whose 104 character output
// (16 character salt followed by the base64 key) is stored as is. The
// standard hashers (Argon2, Scrypt, Bcrypt) and the verify-only Crypt sit
// behind the same Hasher interface, and a Registry routes stored hashes to
// the hasher that understands them.
package hash
