package domain

import (
	"fmt"
	"slices"
	"time"
)

// Step is the 1-based position of a wizard step.
type Step int

const (
	StepProjectType Step = iota + 1
	StepFeatures
	StepDetails
	StepBudget
	StepContact
)

// TotalSteps is the number of wizard steps.
const TotalSteps = 5

// Valid reports whether s names an existing step.
func (s Step) Valid() bool {
	return s >= StepProjectType && s <= StepContact
}

func (s Step) String() string {
	return fmt.Sprintf("step-%d", int(s))
}

// StepInput is the candidate data submitted for one step.
type StepInput interface {
	Step() Step
}

// ProjectTypeAnswers holds step 1.
type ProjectTypeAnswers struct {
	ProjectType ProjectType `json:"projectType" validate:"required,projecttype"`
}

func (ProjectTypeAnswers) Step() Step { return StepProjectType }

// FeatureAnswers holds step 2.
type FeatureAnswers struct {
	Features []string `json:"features" validate:"min=1,dive,required"`
}

func (FeatureAnswers) Step() Step { return StepFeatures }

// DetailAnswers holds step 3.
type DetailAnswers struct {
	ProjectDescription string `json:"projectDescription" validate:"textmin=10"`
	TargetAudience     string `json:"targetAudience" validate:"hastext"`
	Competitors        string `json:"competitors"`
	Timeline           string `json:"timeline" validate:"required,timeline"`
}

func (DetailAnswers) Step() Step { return StepDetails }

// Priorities ranks speed, quality and cost from "1" to "3".
type Priorities struct {
	Speed   string `json:"speed" validate:"required,priority"`
	Quality string `json:"quality" validate:"required,priority"`
	Cost    string `json:"cost" validate:"required,priority"`
}

// BudgetAnswers holds step 4.
type BudgetAnswers struct {
	BudgetRange    string     `json:"budgetRange" validate:"required,budget"`
	Priorities     Priorities `json:"priorities"`
	AdditionalInfo string     `json:"additionalInfo"`
}

func (BudgetAnswers) Step() Step { return StepBudget }

// ContactAnswers holds step 5.
type ContactAnswers struct {
	Name          string `json:"name" validate:"hastext"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"phonedigits"`
	Company       string `json:"company"`
	TermsAccepted bool   `json:"termsAccepted" validate:"accepted"`
}

func (ContactAnswers) Step() Step { return StepContact }

// AnswerSet accumulates validated step answers. A slot is set only once its
// step validated; Complete narrows a full set to a ProjectRequest.
type AnswerSet struct {
	ProjectType *ProjectTypeAnswers `json:"type,omitempty"`
	Features    *FeatureAnswers     `json:"features,omitempty"`
	Details     *DetailAnswers      `json:"details,omitempty"`
	Budget      *BudgetAnswers      `json:"budget,omitempty"`
	Contact     *ContactAnswers     `json:"contact,omitempty"`
}

// Clone returns a deep copy of a.
func (a AnswerSet) Clone() AnswerSet {
	var out AnswerSet
	if a.ProjectType != nil {
		v := *a.ProjectType
		out.ProjectType = &v
	}
	if a.Features != nil {
		v := FeatureAnswers{Features: slices.Clone(a.Features.Features)}
		out.Features = &v
	}
	if a.Details != nil {
		v := *a.Details
		out.Details = &v
	}
	if a.Budget != nil {
		v := *a.Budget
		out.Budget = &v
	}
	if a.Contact != nil {
		v := *a.Contact
		out.Contact = &v
	}
	return out
}

// With returns a copy of a with in stored in its step's slot.
func (a AnswerSet) With(in StepInput) AnswerSet {
	out := a.Clone()
	switch v := in.(type) {
	case ProjectTypeAnswers:
		out.ProjectType = &v
	case FeatureAnswers:
		v.Features = slices.Clone(v.Features)
		out.Features = &v
	case DetailAnswers:
		out.Details = &v
	case BudgetAnswers:
		out.Budget = &v
	case ContactAnswers:
		out.Contact = &v
	default:
		panic(fmt.Sprintf("intake: unsupported step input %T", in))
	}
	return out
}

// SelectedType returns the validated project type, if step 1 is done.
func (a AnswerSet) SelectedType() (ProjectType, bool) {
	if a.ProjectType == nil {
		return "", false
	}
	return a.ProjectType.ProjectType, true
}

// SelectedFeatures returns the validated feature tags, if any.
func (a AnswerSet) SelectedFeatures() []string {
	if a.Features == nil {
		return nil
	}
	return slices.Clone(a.Features.Features)
}

// Complete returns the flattened request when every step is present.
func (a AnswerSet) Complete() (ProjectRequest, bool) {
	if a.ProjectType == nil || a.Features == nil || a.Details == nil || a.Budget == nil || a.Contact == nil {
		return ProjectRequest{}, false
	}
	return ProjectRequest{
		ProjectType:        a.ProjectType.ProjectType,
		Features:           slices.Clone(a.Features.Features),
		ProjectDescription: a.Details.ProjectDescription,
		TargetAudience:     a.Details.TargetAudience,
		Competitors:        a.Details.Competitors,
		Timeline:           a.Details.Timeline,
		BudgetRange:        a.Budget.BudgetRange,
		Priorities:         a.Budget.Priorities,
		AdditionalInfo:     a.Budget.AdditionalInfo,
		Name:               a.Contact.Name,
		Email:              a.Contact.Email,
		Phone:              a.Contact.Phone,
		Company:            a.Contact.Company,
		TermsAccepted:      a.Contact.TermsAccepted,
	}, true
}

// ProjectRequest is a complete, flattened answer set. Its JSON keys are the
// body of the submission endpoint.
type ProjectRequest struct {
	ProjectType        ProjectType `json:"projectType"`
	Features           []string    `json:"features"`
	ProjectDescription string      `json:"projectDescription"`
	TargetAudience     string      `json:"targetAudience"`
	Competitors        string      `json:"competitors"`
	Timeline           string      `json:"timeline"`
	BudgetRange        string      `json:"budgetRange"`
	Priorities         Priorities  `json:"priorities"`
	AdditionalInfo     string      `json:"additionalInfo"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone"`
	Company            string      `json:"company"`
	TermsAccepted      bool        `json:"termsAccepted"`
}

// Inputs splits r back into its per-step inputs, in step order.
func (r ProjectRequest) Inputs() []StepInput {
	return []StepInput{
		ProjectTypeAnswers{ProjectType: r.ProjectType},
		FeatureAnswers{Features: slices.Clone(r.Features)},
		DetailAnswers{
			ProjectDescription: r.ProjectDescription,
			TargetAudience:     r.TargetAudience,
			Competitors:        r.Competitors,
			Timeline:           r.Timeline,
		},
		BudgetAnswers{
			BudgetRange:    r.BudgetRange,
			Priorities:     r.Priorities,
			AdditionalInfo: r.AdditionalInfo,
		},
		ContactAnswers{
			Name:          r.Name,
			Email:         r.Email,
			Phone:         r.Phone,
			Company:       r.Company,
			TermsAccepted: r.TermsAccepted,
		},
	}
}

// Impact grades how much a suggestion would improve a project.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Suggestion is one enrichment item proposed by the language model.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Category   string `json:"category"`
	Impact     Impact `json:"impact"`
}

// Submission is a persisted project request.
type Submission struct {
	ID int64 `json:"id"`
	ProjectRequest
	CreatedAt     time.Time    `json:"createdAt"`
	Viewed        bool         `json:"viewed"`
	AISuggestions []Suggestion `json:"aiSuggestions,omitempty"`
}

// NewSubmission stamps a request with its server identity.
func NewSubmission(id int64, req ProjectRequest, now time.Time) Submission {
	req.Features = slices.Clone(req.Features)
	return Submission{
		ID:             id,
		ProjectRequest: req,
		CreatedAt:      now,
	}
}
