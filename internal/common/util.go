package common

// WipeByteArray overwrites the buffer with zeros. Used for passwords read
// from the terminal so they do not linger in memory longer than needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
