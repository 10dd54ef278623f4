package flow

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Random is the source of the keylogger protector. *rand.Rand satisfies it.
type Random interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewSecureRandom returns a ChaCha8 generator seeded from crypto/rand.
func NewSecureRandom() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		binary.LittleEndian.PutUint64(seed[:], rand.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// KeyloggerProtector makes recorded keystrokes useless by asking the user
// to alternate real keystrokes with decoy ones.
//
// In a real phase of 1 to 3 keystrokes the input is kept. In a decoy phase
// of 3 to 12 keystrokes the user types random characters and the input is
// reset to its last real value after each one.
type KeyloggerProtector struct {
	rnd       Random
	enabled   bool
	real      bool
	remaining int
	last      string
}

// NewKeyloggerProtector returns a disabled protector using rnd.
func NewKeyloggerProtector(rnd Random) *KeyloggerProtector {
	if rnd == nil {
		rnd = NewSecureRandom()
	}
	return &KeyloggerProtector{rnd: rnd}
}

// Enable starts protection from the current input value, in a random phase.
func (k *KeyloggerProtector) Enable(current string) {
	k.enabled = true
	k.real = k.rnd.IntN(2) == 0
	k.remaining = k.phaseLength()
	k.last = current
}

// Disable stops protection.
func (k *KeyloggerProtector) Disable() {
	k.enabled = false
}

// Enabled reports whether protection is active.
func (k *KeyloggerProtector) Enabled() bool {
	return k.enabled
}

// SetEnabled enables or disables protection, keeping the current phase
// when the state does not change.
func (k *KeyloggerProtector) SetEnabled(enabled bool, current string) {
	switch {
	case enabled && !k.enabled:
		k.Enable(current)
	case !enabled && k.enabled:
		k.Disable()
	}
}

// HandleInput processes one keystroke that turned the input into value.
// It returns the value the input must show afterwards.
func (k *KeyloggerProtector) HandleInput(value string) string {
	if !k.enabled {
		return value
	}

	if k.real {
		k.last = value
	}
	result := k.last

	k.remaining--
	if k.remaining <= 0 {
		k.real = !k.real
		k.remaining = k.phaseLength()
	}
	return result
}

// Decoy reports whether the next keystrokes will be discarded.
func (k *KeyloggerProtector) Decoy() bool {
	return k.enabled && !k.real
}

// Remaining returns the number of keystrokes left in the current phase.
func (k *KeyloggerProtector) Remaining() int {
	if !k.enabled {
		return 0
	}
	return k.remaining
}

// Prompt returns the instruction for the current phase, or "" when disabled.
func (k *KeyloggerProtector) Prompt() string {
	n := k.Remaining()
	switch {
	case !k.enabled:
		return ""
	case k.real:
		return fmt.Sprintf("Press %d keys entering your master secret. (keylogger protection)", n)
	default:
		return fmt.Sprintf("Press %d random keys similar to the keys of your master secret. (keylogger protection)", n)
	}
}

func (k *KeyloggerProtector) phaseLength() int {
	if k.real {
		return k.rnd.IntN(3) + 1
	}
	return k.rnd.IntN(10) + 3
}
