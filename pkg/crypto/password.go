package crypto

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the stored credential for an account from its
// plaintext password. The hash is set once at registration and never
// serialized.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword checks a login attempt against the account's stored hash.
func ComparePassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}
