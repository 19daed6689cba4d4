package cli

import (
	"errors"

	"github.com/manifoldco/promptui"
)

func promptForPassword(label string, minLen int) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . | bold }} ",
		Valid:   "{{ . | green }} ",
		Invalid: "{{ . | red }} ",
		Success: "{{ . | bold }} ",
	}

	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Mask:      '•',
		Validate: func(input string) error {
			if len(input) < minLen {
				return errors.New("please enter a longer password")
			}
			return nil
		},
	}

	for {
		result, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return "", err
			}
			continue
		}
		return result, nil
	}
}
