package password

import (
	"errors"
	"fmt"
	"os"

	"github.com/thorgate/flint/internal/utils"
)

// EnvVar is the environment variable that supplies the passphrase in CI.
const EnvVar = "FLINT_PASSWORD"

// EnvSource reads a passphrase from the environment. It is consulted once
// per resolution; a wrong value is never replaced by a prompt.
type EnvSource struct {
	// Name defaults to FLINT_PASSWORD.
	Name string
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Value returns the passphrase and whether a non-empty one was set.
func (e EnvSource) Value() (string, bool) {
	name := e.Name
	if name == "" {
		name = EnvVar
	}
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Prompter asks the user for a passphrase.
type Prompter interface {
	// Interactive reports whether prompting is possible at all.
	Interactive() bool
	// ReadPassword shows prompt and reads a line without echo.
	ReadPassword(prompt string) (string, error)
}

// TerminalPrompter reads passphrases from the controlling terminal.
type TerminalPrompter struct {
	// Disabled turns prompting off even when a terminal is attached.
	Disabled bool
}

func (p TerminalPrompter) Interactive() bool {
	if p.Disabled {
		return false
	}
	return utils.IsTerminal() || utils.IsTTYAvailable()
}

func (p TerminalPrompter) ReadPassword(prompt string) (string, error) {
	if p.Disabled {
		return "", ErrPromptDisabled
	}
	var (
		b   []byte
		err error
	)
	if utils.IsTerminal() {
		b, err = utils.ReadPassphrase(prompt)
	} else {
		b, err = utils.ReadPassphraseFromTTY(prompt)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ErrPromptDisabled is returned by prompters that cannot ask anything.
var ErrPromptDisabled = errors.New("prompting is disabled")

// ScriptedPrompter answers prompts from a fixed list. It records every
// prompt it was shown.
type ScriptedPrompter struct {
	Answers        []string
	NonInteractive bool
	Prompts        []string
}

func (p *ScriptedPrompter) Interactive() bool {
	return !p.NonInteractive
}

func (p *ScriptedPrompter) ReadPassword(prompt string) (string, error) {
	if p.NonInteractive {
		return "", ErrPromptDisabled
	}
	p.Prompts = append(p.Prompts, prompt)
	if len(p.Answers) == 0 {
		return "", fmt.Errorf("no scripted answer left for %q", prompt)
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}
