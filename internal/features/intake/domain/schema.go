package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"devcraft-studio/backend/internal/sanitize"
)

// MinPhoneDigits is the fewest digits a contact phone number may have.
const MinPhoneDigits = 10

// FieldError is a single user-facing validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every field that failed a step schema.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups the messages by field name.
func (v ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Validator checks one step's candidate input. answers carries the steps
// validated so far; it is read only where a rule depends on an earlier step.
type Validator func(in StepInput, answers AnswerSet) ValidationErrors

var messages = map[string]string{
	"projectType":        "Please select a project type",
	"features":           "Select at least one feature",
	"projectDescription": "Please provide more details about your project",
	"targetAudience":     "Please describe your target audience",
	"timeline":           "Please select a timeline",
	"budgetRange":        "Please select a budget range",
	"priorities.speed":   "Rank speed from 1 to 3",
	"priorities.quality": "Rank quality from 1 to 3",
	"priorities.cost":    "Rank cost from 1 to 3",
	"name":               "Name is required",
	"email":              "Invalid email address",
	"phone":              "Please enter a valid phone number",
	"termsAccepted":      "You must accept the terms",
}

var (
	validate    = newValidate()
	indexSuffix = regexp.MustCompile(`\[\d+\]$`)
)

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("intake: register %s validation: %v", tag, err))
		}
	}
	must("projecttype", func(fl validator.FieldLevel) bool {
		return ProjectType(fl.Field().String()).Valid()
	})
	must("timeline", func(fl validator.FieldLevel) bool {
		return slices.Contains(Timelines, fl.Field().String())
	})
	must("budget", func(fl validator.FieldLevel) bool {
		return slices.Contains(BudgetRanges, fl.Field().String())
	})
	must("priority", func(fl validator.FieldLevel) bool {
		return slices.Contains(PriorityRanks, fl.Field().String())
	})
	must("phonedigits", func(fl validator.FieldLevel) bool {
		return countDigits(fl.Field().String()) >= MinPhoneDigits
	})
	must("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Bool()
	})
	// Free text counts only what is left once markup and outer blanks are gone.
	must("hastext", func(fl validator.FieldLevel) bool {
		return sanitize.Text(fl.Field().String()) != ""
	})
	must("textmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("intake: textmin needs an integer, got %q", fl.Param()))
		}
		return utf8.RuneCountInString(sanitize.Text(fl.Field().String())) >= n
	})
	return v
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// SchemaFor returns the validator of step. Asking for a step outside 1..5 is
// a wiring bug and panics.
func SchemaFor(step Step) Validator {
	switch step {
	case StepProjectType:
		return structSchema[ProjectTypeAnswers](step)
	case StepFeatures:
		return validateFeatures
	case StepDetails:
		return structSchema[DetailAnswers](step)
	case StepBudget:
		return structSchema[BudgetAnswers](step)
	case StepContact:
		return structSchema[ContactAnswers](step)
	default:
		panic(fmt.Sprintf("intake: no schema for step %d", int(step)))
	}
}

func structSchema[T StepInput](step Step) Validator {
	return func(in StepInput, _ AnswerSet) ValidationErrors {
		v, ok := in.(T)
		if !ok {
			panic(fmt.Sprintf("intake: %s schema given %T", step, in))
		}
		return structErrors(v)
	}
}

func validateFeatures(in StepInput, answers AnswerSet) ValidationErrors {
	v, ok := in.(FeatureAnswers)
	if !ok {
		panic(fmt.Sprintf("intake: %s schema given %T", StepFeatures, in))
	}
	if errs := structErrors(v); len(errs) > 0 {
		return errs
	}
	projectType, ok := answers.SelectedType()
	if !ok {
		return ValidationErrors{{Field: "projectType", Message: messages["projectType"]}}
	}
	var errs ValidationErrors
	for _, id := range v.Features {
		if !projectType.HasFeature(id) {
			errs = append(errs, FieldError{
				Field:   "features",
				Message: fmt.Sprintf("%q is not a %s feature", id, projectType),
			})
		}
	}
	return errs
}

func structErrors(v any) ValidationErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(fmt.Sprintf("intake: validate %T: %v", v, err))
	}
	seen := make(map[string]bool, len(verrs))
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if seen[field] {
			continue
		}
		seen[field] = true
		msg, ok := messages[field]
		if !ok {
			msg = fmt.Sprintf("failed %q rule", fe.Tag())
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

// fieldPath drops the struct name from a validator namespace and folds
// slice elements into their field, "FeatureAnswers.features[2]" -> "features".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return indexSuffix.ReplaceAllString(ns, "")
}

// ValidateRequest runs every step schema over a complete request in order,
// the way the wizard would have.
func ValidateRequest(req ProjectRequest) ValidationErrors {
	var (
		answers AnswerSet
		all     ValidationErrors
	)
	for _, in := range req.Inputs() {
		errs := SchemaFor(in.Step())(in, answers)
		if len(errs) > 0 {
			for _, fe := range errs {
				if !slices.Contains(all, fe) {
					all = append(all, fe)
				}
			}
			continue
		}
		answers = answers.With(in)
	}
	return all
}

// DecodeStepInput parses a JSON body into the input type of step. Keys that
// belong to other steps are ignored.
func DecodeStepInput(step Step, raw []byte) (StepInput, error) {
	var (
		in  StepInput
		err error
	)
	switch step {
	case StepProjectType:
		in, err = decodeAs[ProjectTypeAnswers](raw)
	case StepFeatures:
		in, err = decodeAs[FeatureAnswers](raw)
	case StepDetails:
		in, err = decodeAs[DetailAnswers](raw)
	case StepBudget:
		in, err = decodeAs[BudgetAnswers](raw)
	case StepContact:
		in, err = decodeAs[ContactAnswers](raw)
	default:
		return nil, fmt.Errorf("decode step input: unknown step %d", int(step))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s input: %w", step, err)
	}
	return in, nil
}

func decodeAs[T StepInput](raw []byte) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}
