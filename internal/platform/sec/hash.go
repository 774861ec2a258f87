// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes plain-text password material using the bcrypt algorithm.
//
// The input is accepted as a byte slice so the caller can wipe it with
// [Wipe] immediately after this call returns.
func HashPassword(plainTextPassword []byte) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(plainTextPassword, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares plain-text password material with its hashed version.
// bcrypt performs the comparison in constant time.
func CheckPasswordHash(plainTextPassword []byte, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), plainTextPassword)
	return err == nil
}
