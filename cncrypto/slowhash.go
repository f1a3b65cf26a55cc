package cncrypto

import (
	"ekyu.moe/cryptonight"
)

// KeyFromPassword stretches salt||password into a container master key with
// the CryptoNight v0 slow hash.  The memory-hard pass keeps each guess near
// a second of work on commodity hardware.
func KeyFromPassword(salt, password []byte) ChachaKey {
	data := make([]byte, 0, len(salt)+len(password))
	data = append(data, salt...)
	data = append(data, password...)
	sum := cryptonight.Sum(data, 0)
	var key ChachaKey
	copy(key[:], sum)
	return key
}
