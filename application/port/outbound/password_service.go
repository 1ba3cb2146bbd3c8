package outbound

type PasswordService interface {
	HashPassword(password string) (string, error)
	// VerifyPassword reports whether the plaintext matches the stored hash.
	// It fails closed: a malformed or empty hash verifies as false rather
	// than surfacing an error.
	VerifyPassword(password, hash string) bool
}
