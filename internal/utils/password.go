package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a performer password for storage.  The cost is
// injected from config; tests run at the bcrypt minimum to stay fast.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(hash), err
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
