package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/features/intake/application"
	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/infrastructure"
	"devcraft-studio/backend/internal/features/intake/wizard"
)

var (
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	boxStyle     = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var stepTitles = map[domain.Step]string{
	domain.StepProjectType: "Project type",
	domain.StepFeatures:    "Features",
	domain.StepDetails:     "Project details",
	domain.StepBudget:      "Budget and priorities",
	domain.StepContact:     "Contact",
}

const (
	choiceFix  = "Fix my answers"
	choiceBack = "Go back a step"
	choiceQuit = "Quit"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Fill in a project request from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		api := infrastructure.NewAPIClient(serverURL)
		w, err := wizard.New(api, api,
			wizard.WithLogger(logger),
			wizard.WithPrompts(application.StepPrompts(config.LoadOrDefault(nil, logger))),
		)
		if err != nil {
			return err
		}
		defer w.WaitForSuggestions()

		err = (&intakeRunner{wizard: w, prompt: surveyPrompter{}, out: cmd.OutOrStdout()}).run(cmd.Context())
		if errors.Is(err, ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		}
		return err
	},
}

// intakeRunner walks a wizard to submission with a Prompter.
type intakeRunner struct {
	wizard *wizard.Wizard
	prompt Prompter
	out    io.Writer
}

func (r *intakeRunner) run(ctx context.Context) error {
	for {
		// Suggestions requested by the previous step are shown before the next one.
		r.wizard.WaitForSuggestions()
		snap := r.wizard.Snapshot()
		if snap.Phase == wizard.PhaseSubmitted {
			r.printSubmission(snap)
			return nil
		}
		r.printStep(snap)

		in, err := r.ask(snap)
		if err != nil {
			return err
		}
		err = r.wizard.Advance(ctx, in)

		var (
			verrs  domain.ValidationErrors
			subErr *wizard.SubmissionError
		)
		switch {
		case err == nil:
		case errors.As(err, &verrs):
			for _, e := range verrs {
				fmt.Fprintln(r.out, errorStyle.Render("  ✗ "+e.Field+": "+e.Message))
			}
			if err := r.recover(snap.Step); err != nil {
				return err
			}
		case errors.As(err, &subErr):
			fmt.Fprintln(r.out, errorStyle.Render("Could not send your request: "+subErr.Err.Error()))
			retry, err := r.prompt.Confirm("Your answers are kept. Try again?", true)
			if err != nil {
				return err
			}
			if !retry {
				return subErr
			}
		default:
			return err
		}
	}
}

// recover asks what to do after rejected answers.
func (r *intakeRunner) recover(step domain.Step) error {
	options := []string{choiceFix}
	if step > domain.StepProjectType {
		options = append(options, choiceBack)
	}
	options = append(options, choiceQuit)

	choice, err := r.prompt.Select("What next?", options, choiceFix)
	if err != nil {
		return err
	}
	switch choice {
	case choiceBack:
		return r.wizard.Retreat()
	case choiceQuit:
		return ErrAborted
	}
	return nil
}

func (r *intakeRunner) ask(snap wizard.Snapshot) (domain.StepInput, error) {
	a := snap.Answers
	switch snap.Step {
	case domain.StepProjectType:
		options := make([]string, len(domain.ProjectTypes))
		for i, t := range domain.ProjectTypes {
			options[i] = string(t)
		}
		def := ""
		if a.ProjectType != nil {
			def = string(a.ProjectType.ProjectType)
		}
		choice, err := r.prompt.Select("Project type", options, def)
		if err != nil {
			return nil, err
		}
		return domain.ProjectTypeAnswers{ProjectType: domain.ProjectType(choice)}, nil

	case domain.StepFeatures:
		labels := make([]string, len(snap.Catalog))
		byLabel := make(map[string]string, len(snap.Catalog))
		var defs []string
		selected := map[string]bool{}
		if a.Features != nil {
			for _, id := range a.Features.Features {
				selected[id] = true
			}
		}
		for i, opt := range snap.Catalog {
			labels[i] = opt.Label
			byLabel[opt.Label] = opt.ID
			if selected[opt.ID] {
				defs = append(defs, opt.Label)
			}
		}
		chosen, err := r.prompt.MultiSelect("Features", labels, defs)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(chosen))
		for _, label := range chosen {
			ids = append(ids, byLabel[label])
		}
		return domain.FeatureAnswers{Features: ids}, nil

	case domain.StepDetails:
		var d domain.DetailAnswers
		if a.Details != nil {
			d = *a.Details
		}
		var err error
		if d.ProjectDescription, err = r.prompt.Multiline("Describe the project", d.ProjectDescription); err != nil {
			return nil, err
		}
		if d.TargetAudience, err = r.prompt.Input("Target audience", d.TargetAudience); err != nil {
			return nil, err
		}
		if d.Competitors, err = r.prompt.Input("Competitors (optional)", d.Competitors); err != nil {
			return nil, err
		}
		if d.Timeline, err = r.prompt.Select("Timeline", domain.Timelines, d.Timeline); err != nil {
			return nil, err
		}
		return d, nil

	case domain.StepBudget:
		var b domain.BudgetAnswers
		if a.Budget != nil {
			b = *a.Budget
		}
		var err error
		if b.BudgetRange, err = r.prompt.Select("Budget", domain.BudgetRanges, b.BudgetRange); err != nil {
			return nil, err
		}
		ranks := []struct {
			label string
			dst   *string
		}{
			{"Rank speed (1 = most important)", &b.Priorities.Speed},
			{"Rank quality", &b.Priorities.Quality},
			{"Rank cost", &b.Priorities.Cost},
		}
		for _, rank := range ranks {
			if *rank.dst, err = r.prompt.Select(rank.label, domain.PriorityRanks, *rank.dst); err != nil {
				return nil, err
			}
		}
		if b.AdditionalInfo, err = r.prompt.Multiline("Anything else? (optional)", b.AdditionalInfo); err != nil {
			return nil, err
		}
		return b, nil

	default:
		var c domain.ContactAnswers
		if a.Contact != nil {
			c = *a.Contact
		}
		var err error
		if c.Name, err = r.prompt.Input("Name", c.Name); err != nil {
			return nil, err
		}
		if c.Email, err = r.prompt.Input("Email", c.Email); err != nil {
			return nil, err
		}
		if c.Phone, err = r.prompt.Input("Phone", c.Phone); err != nil {
			return nil, err
		}
		if c.Company, err = r.prompt.Input("Company (optional)", c.Company); err != nil {
			return nil, err
		}
		if c.TermsAccepted, err = r.prompt.Confirm("Do you accept the terms and privacy policy?", c.TermsAccepted); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (r *intakeRunner) printStep(snap wizard.Snapshot) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, stepStyle.Render(fmt.Sprintf("Step %d of %d: %s", snap.Step, snap.TotalSteps, stepTitles[snap.Step])))
	if snap.Prompt != "" {
		fmt.Fprintln(r.out, hintStyle.Render(snap.Prompt))
	}
	if snap.Error != "" {
		fmt.Fprintln(r.out, errorStyle.Render("Last attempt failed: "+snap.Error))
	}
	if len(snap.Suggestions) > 0 && snap.Step <= domain.StepDetails {
		lines := make([]string, 0, len(snap.Suggestions)+1)
		lines = append(lines, "You might also consider:")
		for _, s := range snap.Suggestions {
			lines = append(lines, fmt.Sprintf("• %s (%s, %s impact)", s.Suggestion, s.Category, s.Impact))
		}
		fmt.Fprintln(r.out, boxStyle.Render(strings.Join(lines, "\n")))
	}
}

func (r *intakeRunner) printSubmission(snap wizard.Snapshot) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, successStyle.Render("Thank you! Your project request was received."))
	if sub := snap.Submission; sub != nil {
		fmt.Fprintln(r.out, boxStyle.Render(fmt.Sprintf("Reference #%d\n%s project with %d features\nWe will reach out to %s.",
			sub.ID, sub.ProjectType, len(sub.Features), sub.Email)))
	}
}

func init() {
	intakeCmd.Flags().String("server", envOr("DEVCRAFT_SERVER", "http://localhost:8080"), "intake API base URL")
	RootCmd.AddCommand(intakeCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
