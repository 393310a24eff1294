package wizard

import (
	"errors"

	"github.com/lexpravo/intake-api/internal/models"
)

// Wizard steps. The review step is terminal on the server side: a
// confirmed submission clears the snapshot, the success screen is
// client-side only.
const (
	StepCategory    = 1
	StepDescription = 2
	StepContact     = 3
	StepReview      = 4
)

var (
	// ErrAtFirstStep is returned when retreating from step 1
	ErrAtFirstStep = errors.New("already at the first step")

	// ErrAtReviewStep is returned when advancing from the review step;
	// the only way forward from there is submission
	ErrAtReviewStep = errors.New("review step advances via submission")
)

// NewState returns a fresh wizard state positioned at the first step
func NewState() *models.WizardState {
	return &models.WizardState{
		CurrentStep: StepCategory,
		Draft: models.ApplicationDraft{
			ContactTime: models.ContactTimeAny,
			Files:       []models.FileAttachment{},
		},
	}
}

// Advance moves the wizard forward one step if every field the current
// step requires is valid. On failure the state is left unchanged and the
// first unmet rule is returned for the client to surface.
func Advance(state *models.WizardState) (FieldResult, error) {
	if state.CurrentStep >= StepReview {
		return ok(), ErrAtReviewStep
	}

	if res := ValidateStep(&state.Draft, state.CurrentStep); !res.Valid {
		return res, nil
	}

	state.CurrentStep++
	return ok(), nil
}

// Retreat moves the wizard back one step. Always succeeds above step 1;
// no validation is required to go back.
func Retreat(state *models.WizardState) error {
	if state.CurrentStep <= StepCategory {
		return ErrAtFirstStep
	}
	state.CurrentStep--
	return nil
}

// Review projects the draft into the confirmation summary shown on step 4
func Review(draft *models.ApplicationDraft) *models.ReviewSummary {
	summary := &models.ReviewSummary{
		Category:    draft.CategoryName,
		Subcategory: draft.Subcategory,
		Description: draft.Description,
		Name:        draft.Name,
		Phone:       draft.Phone,
		Email:       draft.Email,
		Contact:     string(draft.ContactMethod),
	}
	for _, f := range draft.Files {
		summary.FileNames = append(summary.FileNames, f.Name)
	}
	return summary
}
