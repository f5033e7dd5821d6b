package cli

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("intake aborted")

// Prompter asks the user for answers. surveyPrompter is the terminal
// implementation; tests script their own.
type Prompter interface {
	Input(message, def string) (string, error)
	Multiline(message, def string) (string, error)
	Select(message string, options []string, def string) (string, error)
	MultiSelect(message string, options, defs []string) ([]string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Multiline(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Multiline{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if indexOf(options, def) >= 0 {
		prompt.Default = def
	}
	err := survey.AskOne(prompt, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) MultiSelect(message string, options, defs []string) ([]string, error) {
	var out []string
	prompt := &survey.MultiSelect{Message: message, Options: options, PageSize: 12}
	var known []string
	for _, d := range defs {
		if indexOf(options, d) >= 0 {
			known = append(known, d)
		}
	}
	if len(known) > 0 {
		prompt.Default = known
	}
	err := survey.AskOne(prompt, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
