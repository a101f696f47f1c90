package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// WithSpinner shows a spinner on stderr while fn runs, then reports the
// outcome. Stderr keeps the frames out of captured command output.
func WithSpinner(message string, fn func() error) error {
	charSet := spinner.CharSets[14]
	if !UseUnicode {
		charSet = spinner.CharSets[0]
	}

	sp := spinner.New(charSet, 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " " + message
	if UseColors {
		_ = sp.Color("cyan") //nolint:errcheck
	}

	sp.Start()
	err := fn()
	sp.Stop()

	if err != nil {
		ErrorMsg("%s failed: %v", message, err)
		return err
	}
	SuccessMsg("%s", message)
	return nil
}
