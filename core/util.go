package core

import (
	"math/rand"
	"time"
)

var alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Gensym makes a random string of the given length, handy for
// generating unique reaction/diagnostic names in tests and tools.
func Gensym(n int) string {
	bs := make([]byte, n)
	for i := range bs {
		bs[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(bs)
}

// Timestamp returns the current time in RFC3339Nano, used by the
// audit package for diagnostic records.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
