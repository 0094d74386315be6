// Package passcode implements the 4-digit gate shown before the vault.
//
// The code is stored verbatim under a single preference key. There is no
// hashing, lockout or attempt counter.
package passcode

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Length is the number of characters in a passcode.
const Length = 4

// PreferenceKey is the key under which the passcode is persisted.
const PreferenceKey = "vault_passcode"

// ErrLength is returned when a submitted code is not exactly Length characters.
var ErrLength = fmt.Errorf("passcode must be %d characters", Length)

// Preferences is the key/value storage the gate reads and writes.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	PutPreference(ctx context.Context, key, value string) error
}

// Outcome is the result of typing or submitting a code.
type Outcome int

const (
	// Pending means fewer than Length digits have been entered.
	Pending Outcome = iota
	// Created means the code was stored on first use; access is granted.
	Created
	// Granted means the code matched the stored one.
	Granted
	// Denied means the code did not match; the buffer was cleared.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Created:
		return "created"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Unlocked reports whether the outcome lets the user through.
func (o Outcome) Unlocked() bool {
	return o == Created || o == Granted
}

// Gate holds the input buffer and the stored code.
type Gate struct {
	prefs    Preferences
	log      *zap.Logger
	stored   string
	firstRun bool
	buffer   []rune
}

// NewGate reads the stored passcode. A missing record means first run.
func NewGate(ctx context.Context, prefs Preferences, log *zap.Logger) (*Gate, error) {
	if prefs == nil {
		return nil, errors.New("nil preferences")
	}
	if log == nil {
		log = zap.NewNop()
	}
	stored, ok, err := prefs.GetPreference(ctx, PreferenceKey)
	if err != nil {
		return nil, fmt.Errorf("read passcode: %w", err)
	}
	return &Gate{
		prefs:    prefs,
		log:      log,
		stored:   stored,
		firstRun: !ok,
		buffer:   make([]rune, 0, Length),
	}, nil
}

// FirstRun reports whether no passcode has been stored yet.
func (g *Gate) FirstRun() bool {
	return g.firstRun
}

// Prompt returns the instruction shown above the dots.
func (g *Gate) Prompt() string {
	if g.firstRun {
		return "Create Passcode"
	}
	return "Enter Passcode"
}

// Filled returns how many characters are in the buffer.
func (g *Gate) Filled() int {
	return len(g.buffer)
}

// Reset clears the buffer.
func (g *Gate) Reset() {
	g.buffer = g.buffer[:0]
}

// Backspace removes the last buffered character.
func (g *Gate) Backspace() {
	if len(g.buffer) > 0 {
		g.buffer = g.buffer[:len(g.buffer)-1]
	}
}

// Type appends a digit and submits once Length digits are buffered.
// Non-digit runes are ignored.
func (g *Gate) Type(ctx context.Context, r rune) (Outcome, error) {
	if r < '0' || r > '9' {
		return Pending, nil
	}
	if len(g.buffer) >= Length {
		return Pending, nil
	}
	g.buffer = append(g.buffer, r)
	if len(g.buffer) < Length {
		return Pending, nil
	}
	code := string(g.buffer)
	g.Reset()
	return g.Submit(ctx, code)
}

// Submit checks a complete code. On first run the code is persisted verbatim.
func (g *Gate) Submit(ctx context.Context, code string) (Outcome, error) {
	if utf8.RuneCountInString(code) != Length {
		return Pending, ErrLength
	}
	if g.firstRun {
		if err := g.prefs.PutPreference(ctx, PreferenceKey, code); err != nil {
			return Pending, fmt.Errorf("store passcode: %w", err)
		}
		g.stored = code
		g.firstRun = false
		g.log.Info("passcode created")
		return Created, nil
	}
	if code == g.stored {
		g.log.Debug("passcode accepted")
		return Granted, nil
	}
	g.Reset()
	g.log.Info("passcode rejected")
	return Denied, nil
}
