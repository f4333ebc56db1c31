package cli

import (
	"github.com/AlecAivazis/survey/v2"
)

// prompter abstracts interactive prompts so command flows can be tested
// without a terminal.
type prompter interface {
	Confirm(message, help string, def bool) (bool, error)
	Input(message, help, defaultValue string, validate func(string) error) (string, error)
	Select(message string, options []string) (int, error)
}

// surveyPrompter implements prompter with interactive terminal prompts.
type surveyPrompter struct{}

func (surveyPrompter) Confirm(message, help string, def bool) (bool, error) {
	answer := def
	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: def,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func (surveyPrompter) Input(message, help, defaultValue string, validate func(string) error) (string, error) {
	answer := ""
	prompt := &survey.Input{
		Message: message,
		Help:    help,
		Default: defaultValue,
	}

	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}

	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	index := 0
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return 0, err
	}
	return index, nil
}
