// Package speech reads text aloud through a system text-to-speech command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// baseWPM is the speaking rate at rate 1.0.
const baseWPM = 175

// ErrNoVoice is returned by Detect when no supported command is installed.
var ErrNoVoice = errors.New("no text-to-speech command found")

// candidates are probed in order. Each accepts a words-per-minute flag.
var candidates = []struct {
	name string
	rate string
}{
	{name: "espeak-ng", rate: "-s"},
	{name: "espeak", rate: "-s"},
	{name: "say", rate: "-r"},
}

// Command speaks by running an external program once per utterance.
type Command struct {
	Path     string
	RateFlag string
}

// Detect returns the first installed text-to-speech command.
func Detect() (*Command, error) {
	return detect(exec.LookPath)
}

func detect(lookPath func(string) (string, error)) (*Command, error) {
	for _, c := range candidates {
		path, err := lookPath(c.name)
		if err == nil {
			return &Command{Path: path, RateFlag: c.rate}, nil
		}
	}
	return nil, ErrNoVoice
}

// Args builds the command line for text at the given rate multiplier. The
// text follows "--" so a leading dash is not read as an option.
func (c *Command) Args(text string, rate float64) []string {
	if rate <= 0 {
		rate = 1
	}
	wpm := int(math.Round(baseWPM * rate))
	return []string{c.RateFlag, strconv.Itoa(wpm), "--", text}
}

// Speak blocks until the utterance ends or ctx is done.
func (c *Command) Speak(ctx context.Context, text string, rate float64) error {
	if text == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, c.Path, c.Args(text, rate)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speak with %s: %w: %s", c.Path, err, out)
	}
	return nil
}
