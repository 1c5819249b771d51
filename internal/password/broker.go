package password

import (
	"fmt"
	"strings"

	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
)

const (
	PromptPassphrase = "Passphrase for Git Repo: "
	PromptConfirm    = "Type passphrase again: "
)

type entry struct {
	value   string
	cleared bool
}

// Broker resolves and caches passphrases for the lifetime of a session.
type Broker struct {
	Env      EnvSource
	Prompter Prompter
	Log      logger.Logger

	// MaxConfirmAttempts bounds the confirmation loop. Zero means unbounded.
	MaxConfirmAttempts int

	entries map[Identity]*entry
}

// NewBroker returns a broker reading FLINT_PASSWORD and prompting with p.
func NewBroker(p Prompter, log logger.Logger) *Broker {
	return &Broker{Env: EnvSource{}, Prompter: p, Log: log}
}

// FromEnvironment reports whether the passphrase comes from FLINT_PASSWORD.
func (b *Broker) FromEnvironment() bool {
	_, ok := b.Env.Value()
	return ok
}

// Resolve returns the passphrase for id.
func (b *Broker) Resolve(id Identity) (string, error) {
	if v, ok := b.Env.Value(); ok {
		return v, nil
	}
	if e := b.entries[id]; e != nil && !e.cleared && e.value != "" {
		return e.value, nil
	}

	if b.Prompter == nil || !b.Prompter.Interactive() {
		b.Log.Errorf("The %s environment variable did not contain a password.", EnvVar)
		b.Log.Errorf("Bailing out instead of asking for a password, since this is non-interactive mode.")
		return "", ferrors.ErrNoPasswordAvailable
	}

	b.Log.Warnf("Enter the passphrase that should be used to encrypt/decrypt your keystores")
	b.Log.Warnf("This passphrase is specific per repository and will be stored for this session only")
	b.Log.Warnf("Make sure to remember the password, as you'll need it when you run flint again")

	pw, err := b.PromptNew(PromptPassphrase, true)
	if err != nil {
		return "", err
	}
	b.Store(id, pw)
	return pw, nil
}

// PromptNew asks for a passphrase. With confirm it asks a second time and
// repeats until both entries match; a blank entry is refused and asked for
// again. MaxConfirmAttempts bounds both loops.
func (b *Broker) PromptNew(prompt string, confirm bool) (string, error) {
	if b.Prompter == nil || !b.Prompter.Interactive() {
		return "", ferrors.ErrNotInteractive
	}

	for attempt := 1; ; attempt++ {
		pw, err := b.Prompter.ReadPassword(prompt)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if !confirm {
			return pw, nil
		}
		if strings.TrimSpace(pw) == "" {
			b.Log.Errorf("The passphrase must not be empty. Try again")
			if b.MaxConfirmAttempts > 0 && attempt >= b.MaxConfirmAttempts {
				return "", ferrors.ErrEmptyPassword
			}
			continue
		}

		again, err := b.Prompter.ReadPassword(PromptConfirm)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if pw == again {
			return pw, nil
		}

		b.Log.Errorf("Passphrases differ. Try again")
		if b.MaxConfirmAttempts > 0 && attempt >= b.MaxConfirmAttempts {
			return "", ferrors.ErrPasswordMismatch
		}
	}
}

// Store caches pw for id.
func (b *Broker) Store(id Identity, pw string) {
	if b.entries == nil {
		b.entries = make(map[Identity]*entry)
	}
	b.entries[id] = &entry{value: pw}
}

// Clear forgets the passphrase for id so the next Resolve prompts again.
func (b *Broker) Clear(id Identity) {
	if b.entries == nil {
		b.entries = make(map[Identity]*entry)
	}
	b.entries[id] = &entry{cleared: true}
}

// Cleared reports whether the entry for id was explicitly cleared.
func (b *Broker) Cleared(id Identity) bool {
	e := b.entries[id]
	return e != nil && e.cleared
}

// Reset drops every cached passphrase.
func (b *Broker) Reset() {
	b.entries = nil
}
