package auth

import "golang.org/x/crypto/bcrypt"

// HashPassphrase produces the value expected in AUTH_PASSPHRASE_HASH.
func HashPassphrase(passphrase string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassphrase(passphrase, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase))
	return err == nil
}
