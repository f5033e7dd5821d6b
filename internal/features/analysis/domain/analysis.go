package domain

import "time"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Request is what a visitor sends to have their current site reviewed.
type Request struct {
	WebsiteURL       string   `json:"websiteUrl" binding:"required,url"`
	PainPoints       string   `json:"painPoints"`
	ImprovementAreas []string `json:"improvementAreas"`
	Budget           string   `json:"budget"`
	Email            string   `json:"email" binding:"required,email"`
}

// Analysis is a stored request plus the model's review once it arrives.
type Analysis struct {
	ID int64 `json:"id"`
	Request
	AIAnalysis *Result   `json:"aiAnalysis"`
	CreatedAt  time.Time `json:"createdAt"`
	Viewed     bool      `json:"viewed"`
}

type Issue struct {
	Description   string   `json:"description"`
	Priority      Priority `json:"priority"`
	EstimatedCost string   `json:"estimatedCost"`
}

type Issues struct {
	DesignIssues        []Issue `json:"designIssues"`
	PerformanceIssues   []Issue `json:"performanceIssues"`
	ResponsiveIssues    []Issue `json:"responsiveIssues"`
	FunctionalityIssues []Issue `json:"functionalityIssues"`
}

type Recommendation struct {
	Description   string   `json:"description"`
	EstimatedCost string   `json:"estimatedCost"`
	EstimatedTime string   `json:"estimatedTime"`
	Priority      Priority `json:"priority"`
}

type CostRange struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// Result is the structured review produced by the model.
type Result struct {
	Summary            string           `json:"summary"`
	Issues             Issues           `json:"issues"`
	Recommendations    []Recommendation `json:"recommendations"`
	TotalEstimatedCost CostRange        `json:"totalEstimatedCost"`
	TotalEstimatedTime string           `json:"totalEstimatedTime"`
}

// FallbackResult is stored when the model could not produce a review.
func FallbackResult() *Result {
	return &Result{
		Summary: "Unable to complete full analysis due to technical issues",
		Issues: Issues{
			DesignIssues: []Issue{{
				Description:   "Analysis unavailable at this time",
				Priority:      PriorityMedium,
				EstimatedCost: "Varies",
			}},
			PerformanceIssues:   []Issue{},
			ResponsiveIssues:    []Issue{},
			FunctionalityIssues: []Issue{},
		},
		Recommendations: []Recommendation{{
			Description:   "Please try again later or contact support for a manual analysis",
			EstimatedCost: "N/A",
			EstimatedTime: "N/A",
			Priority:      PriorityMedium,
		}},
		TotalEstimatedCost: CostRange{Low: "N/A", High: "N/A"},
		TotalEstimatedTime: "N/A",
	}
}
