// Package game holds the bulls-and-cows rules: scoring, secret
// generation, and the per-session record (player slots, turn state, move
// history). It knows nothing about connections or the wire protocol.
package game

import "math/rand"

// Score counts bulls and cows for a guess against a secret. A bull is a
// digit matching in both value and position; a cow is a digit present in
// the secret at a different position. Both arguments are 4 distinct
// decimal digits, so bulls+cows never exceeds 4 and bulls == 4 exactly
// when guess equals secret.
//
// Parameters:
//   - guess: The guessed digits
//   - secret: The session secret
//
// Returns:
//   - The bull count and the cow count
func Score(guess, secret string) (bulls, cows int) {
	for i := 0; i < len(guess); i++ {
		switch {
		case guess[i] == secret[i]:
			bulls++
		case containsByte(secret, guess[i]):
			cows++
		}
	}

	return bulls, cows
}

// NewSecret returns a fresh secret: 4 distinct decimal digits drawn
// uniformly. The secret is fixed for the session's lifetime.
func NewSecret() string {
	digits := []byte("0123456789")
	rand.Shuffle(len(digits), func(i, j int) {
		digits[i], digits[j] = digits[j], digits[i]
	})

	return string(digits[:4])
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}

	return false
}
