package content

import "math/rand"

const keyChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey returns a random 5-character block key.
func GenerateKey() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = keyChars[rand.Intn(len(keyChars))]
	}
	return string(b)
}

// randomKey generates block keys; tests replace it.
var randomKey = GenerateKey

// newKey returns a key not already used in d.
func (d Document) newKey() string {
	for {
		k := randomKey()
		if _, ok := d.index[k]; !ok {
			return k
		}
	}
}
