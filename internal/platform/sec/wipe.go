// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package sec

// # Secret Hygiene
//
// Raw password material held transiently in memory (registration, password
// reset) must be overwritten with zero bytes on every exit path rather than
// left for the garbage collector. Callers defer [Wipe] immediately after
// acquiring the buffer so success, failure, and panic paths are all covered.

// Wipe overwrites every byte of the buffer with zero.
func Wipe(secret []byte) {
	for i := range secret {
		secret[i] = 0
	}
}
