// Package protocol implements the wire codec for the bulls-and-cows duel
// protocol: the server reply tokens, guess parsing and validation,
// nickname sanitizing, and result rendering. Everything here is pure;
// state lives in the registry and the hub.
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Server reply tokens. Each is written as the payload followed by a
// single line feed.
const (
	Connected            = "SC"   // sent right after accept
	OpponentDisconnected = "OD"   // peer left mid-game
	NicknameInUse        = "NIU"  // nickname already held by a live client
	NicknameSet          = "NS"   // nickname accepted
	WrongTurn            = "WT"   // message received out of turn
	InvalidGuess         = "IG"   // recoverable guess defect, retry allowed
	Win                  = "WIN"  // sender guessed the secret
	Lost                 = "LOST" // opponent guessed the secret
	GameEnded            = "EG"   // session is over
	YourTurn             = "UT"
	OpponentTurn         = "OT"
	GameStarted          = "SG" // both slots occupied, play begins
	WrongFormat          = "WF" // protocol violation, connection will close
)

// GuessMarker is the mandatory first byte of a guess message.
const GuessMarker = 'G'

// GuessLength is the number of digits in a guess or secret.
const GuessLength = 4

// MaxNicknameLength is the byte limit applied to incoming nicknames.
const MaxNicknameLength = 20

// keepAliveToken marks liveness probes; lines containing it are dropped
// before any dispatch.
const keepAliveToken = "PING"

// Guess validation errors. ErrNoMarker is a protocol violation and fatal
// to the connection; the rest are recoverable and answered with IG.
var (
	ErrNoMarker       = errors.New("guess does not start with the guess marker")
	ErrBadLength      = errors.New("guess payload is not exactly 4 characters")
	ErrNotDigits      = errors.New("guess payload contains a non-digit")
	ErrRepeatedDigits = errors.New("guess payload repeats a digit")
)

// TrimLine strips one trailing line feed, and a carriage return before
// it if present. Only a single terminator is removed; interior bytes are
// untouched.
func TrimLine(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// SanitizeNickname trims one line terminator and truncates the result to
// MaxNicknameLength bytes. The result may be empty, which callers treat
// as "no nickname sent yet".
func SanitizeNickname(raw string) string {
	nick := TrimLine(raw)
	if len(nick) > MaxNicknameLength {
		nick = nick[:MaxNicknameLength]
	}

	return nick
}

// IsKeepAlive reports whether the line is a liveness probe. Probes carry
// the literal keep-alive token anywhere in the line.
func IsKeepAlive(line string) bool {
	return strings.Contains(line, keepAliveToken)
}

// ParseGuess validates a guess message that has already been trimmed of
// its terminator. On success it returns the 4 digit characters after the
// marker.
//
// Returns:
//   - The digit payload of the guess
//   - ErrNoMarker if the marker byte is absent (fatal to the connection),
//     or ErrBadLength/ErrNotDigits/ErrRepeatedDigits for recoverable
//     defects
func ParseGuess(msg string) (string, error) {
	if len(msg) == 0 || msg[0] != GuessMarker {
		return "", ErrNoMarker
	}

	digits := msg[1:]
	if len(digits) != GuessLength {
		return "", ErrBadLength
	}

	var seen [10]bool
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return "", ErrNotDigits
		}
		if seen[c-'0'] {
			return "", ErrRepeatedDigits
		}
		seen[c-'0'] = true
	}

	return digits, nil
}

// FormatResult renders the guess-result line sent to both players and
// stored in the move history: the original guess message followed by the
// bull and cow counts, e.g. "G1234B2C1".
func FormatResult(guess string, bulls, cows int) string {
	return fmt.Sprintf("%sB%dC%d", guess, bulls, cows)
}
