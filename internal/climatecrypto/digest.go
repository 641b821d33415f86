package climatecrypto

import (
	"crypto/md5"  //nolint:gosec // vendor protocol mandates MD5 for token/key derivation
	"crypto/sha1" //nolint:gosec // vendor protocol mandates SHA-1 for password hashing
	"encoding/hex"
)

// SHA1HexLower returns the lowercase hex SHA-1 digest of s.
func SHA1HexLower(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// MD5HexLower returns the lowercase hex MD5 digest of s, used as the
// request-validation token over the JSON login body.
func MD5HexLower(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// MD5Raw returns the raw 16-byte MD5 digest of s, used to derive the AES
// key for the login payload from the request timestamp.
func MD5Raw(s string) []byte {
	sum := md5.Sum([]byte(s))
	return sum[:]
}
