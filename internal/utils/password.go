package utils

import "golang.org/x/crypto/bcrypt"

// clampCost keeps cost inside the range bcrypt accepts.
func clampCost(cost int) int {
	return min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
}

// HashPassword returns a salted bcrypt hash using the given cost.  Passwords
// longer than 72 bytes are rejected by bcrypt.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), clampCost(cost))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash and a plain password in constant time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NeedsRehash reports whether hash was made with a cost other than the
// configured one, so it can be upgraded after a successful login.
func NeedsRehash(hash string, cost int) bool {
	c, err := bcrypt.Cost([]byte(hash))
	return err != nil || c != clampCost(cost)
}
