// Package prompt wraps interactive terminal prompts.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted indicates the user cancelled the prompt.
var ErrAborted = errors.New("prompt aborted")

// Password prompts for a masked password input.
func Password(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
			return "", ErrAborted
		}
		return "", err
	}
	return result, nil
}
