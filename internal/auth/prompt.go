package auth

import (
	"github.com/AlecAivazis/survey/v2"
)

// surveyConfirmer implements Confirmer with an interactive terminal prompt.
type surveyConfirmer struct{}

func (surveyConfirmer) Confirm(message, help string) (bool, error) {
	confirmed := true
	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: true,
	}

	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}

	return confirmed, nil
}
