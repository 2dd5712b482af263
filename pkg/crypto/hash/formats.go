package hash

import (
	"bytes"
	"regexp"
)

var bcryptPattern = regexp.MustCompile(`^\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}$`)

// IsPepperChainHash reports whether hash is in the versioned pchain form.
// Legacy pchain hashes carry no marker and can only be recognised by a
// configured PepperChain.
func IsPepperChainHash(hash []byte) bool {
	return bytes.HasPrefix(hash, []byte("$"+pepperChainID+"$"))
}

func IsArgon2idHash(hash []byte) bool {
	return bytes.HasPrefix(hash, []byte("$argon2id$"))
}

func IsScryptHash(hash []byte) bool {
	return bytes.HasPrefix(hash, []byte("$scrypt$"))
}

func IsBcryptHash(hash []byte) bool {
	return bcryptPattern.Match(hash)
}

// IsCryptHash reports whether hash looks like any modular crypt or PHC string.
func IsCryptHash(hash []byte) bool {
	return len(hash) > 1 && hash[0] == '$' && bytes.IndexByte(hash[1:], '$') > 0
}
