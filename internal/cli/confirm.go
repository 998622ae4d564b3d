package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// askConfirm shows a yes/no prompt on the terminal.
func askConfirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation required (%s); pass --yes to accept: %w", prompt, err)
	}
	return ok, nil
}

// confirmer adapts the App's confirmation policy to drag.Confirmer. A prompt
// that cannot be shown counts as declined and the error lands in *errp.
func (app *App) confirmer(errp *error) func(string) bool {
	return func(prompt string) bool {
		if app.Yes {
			return true
		}
		ask := app.confirm
		if ask == nil {
			ask = askConfirm
		}
		ok, err := ask(prompt)
		if err != nil {
			*errp = err
			return false
		}
		return ok
	}
}
