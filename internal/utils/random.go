package utils

import (
	"math/rand"
)

const idLetters = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomID returns a short random identifier used as a public post or
// comment id. Uniqueness is enforced by the database index, not here.
func RandomID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idLetters[rand.Intn(len(idLetters))]
	}
	return string(b)
}
