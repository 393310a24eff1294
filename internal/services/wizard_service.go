package services

import (
	"context"

	"github.com/lexpravo/intake-api/internal/drafts"
	"github.com/lexpravo/intake-api/internal/files"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/wizard"
	apperrors "github.com/lexpravo/intake-api/pkg/errors"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

// WizardService mediates between the draft snapshot store, the step
// machine and file staging. One session key owns one draft.
type WizardService struct {
	store      *drafts.Store
	fileIntake *files.Intake
	categories CategoryServiceInterface
}

func NewWizardService(store *drafts.Store, fileIntake *files.Intake, categories CategoryServiceInterface) *WizardService {
	return &WizardService{
		store:      store,
		fileIntake: fileIntake,
		categories: categories,
	}
}

// GetDraft restores the saved snapshot for a session, or starts a fresh
// wizard when nothing usable is stored
func (s *WizardService) GetDraft(ctx context.Context, sessionKey string) *models.DraftResponse {
	state, restored := s.store.Load(sessionKey)
	if !restored {
		state = wizard.NewState()
	}
	return s.respond(state, restored)
}

// SaveDraft merges the submitted field values into the snapshot. Partial
// and even invalid values are persisted as-is; validation gates step
// transitions and submission, not typing.
func (s *WizardService) SaveDraft(ctx context.Context, sessionKey string, draft *models.ApplicationDraft) (*models.DraftResponse, error) {
	state, _ := s.store.Load(sessionKey)
	if state == nil {
		state = wizard.NewState()
	}

	// Staged files are owned server-side and survive field edits
	staged := state.Draft.Files
	state.Draft = *draft
	state.Draft.Files = staged

	s.resolveCategoryName(ctx, &state.Draft)
	s.store.Save(sessionKey, state)

	return s.respond(state, false), nil
}

// Advance validates the current step and moves the wizard forward.
// On a validation miss it returns the field that blocked the transition
// and the state stays untouched.
func (s *WizardService) Advance(ctx context.Context, sessionKey string) (*models.DraftResponse, *models.StepError) {
	state, _ := s.store.Load(sessionKey)
	if state == nil {
		state = wizard.NewState()
	}

	result, err := wizard.Advance(state)
	if err != nil {
		return nil, &models.StepError{Field: "step", Message: err.Error()}
	}
	if !result.Valid {
		return nil, &models.StepError{Field: result.Field, Message: result.Message}
	}

	s.store.Save(sessionKey, state)
	return s.respond(state, false), nil
}

// Retreat moves the wizard one step back, never dropping entered values
func (s *WizardService) Retreat(ctx context.Context, sessionKey string) (*models.DraftResponse, error) {
	state, _ := s.store.Load(sessionKey)
	if state == nil {
		state = wizard.NewState()
	}

	if err := wizard.Retreat(state); err != nil {
		return nil, apperrors.InvalidInputError("step", err.Error())
	}

	s.store.Save(sessionKey, state)
	return s.respond(state, false), nil
}

// Reset discards the stored snapshot for a session
func (s *WizardService) Reset(ctx context.Context, sessionKey string) {
	s.store.Clear(sessionKey)
	logger.Debug("Draft reset", zap.String("session_key", sessionKey))
}

// StageFiles validates and stores a file selection against the draft.
// Per-file failures come back as rejections and never block siblings.
func (s *WizardService) StageFiles(ctx context.Context, sessionKey string, uploads []models.FileUpload) (*models.FileStageResult, error) {
	if len(uploads) == 0 {
		return nil, apperrors.InvalidInputError("files", "файлы не переданы")
	}

	state, _ := s.store.Load(sessionKey)
	if state == nil {
		state = wizard.NewState()
	}

	accepted, rejections := s.fileIntake.Stage(ctx, sessionKey, state.Draft.Files, uploads)
	if len(accepted) > 0 {
		state.Draft.Files = append(state.Draft.Files, accepted...)
		s.store.Save(sessionKey, state)
	}

	return &models.FileStageResult{
		State:      state,
		Accepted:   accepted,
		Rejections: rejections,
	}, nil
}

// RemoveFile detaches one staged file from the draft
func (s *WizardService) RemoveFile(ctx context.Context, sessionKey string, fileID string) (*models.DraftResponse, error) {
	state, _ := s.store.Load(sessionKey)
	if state == nil {
		return nil, apperrors.NotFoundError("draft")
	}

	remaining, removed := s.fileIntake.Remove(ctx, state.Draft.Files, fileID)
	if !removed {
		return nil, apperrors.NotFoundError("file")
	}

	state.Draft.Files = remaining
	s.store.Save(sessionKey, state)

	return s.respond(state, false), nil
}

func (s *WizardService) respond(state *models.WizardState, restored bool) *models.DraftResponse {
	resp := &models.DraftResponse{
		Restored: restored,
		State:    state,
	}
	if state.CurrentStep >= wizard.StepReview {
		resp.Review = wizard.Review(&state.Draft)
	}
	return resp
}

// resolveCategoryName keeps the denormalized category name in the draft in
// sync with the catalogue so the review screen never shows a stale label
func (s *WizardService) resolveCategoryName(ctx context.Context, draft *models.ApplicationDraft) {
	if draft.CategoryID == nil || s.categories == nil {
		return
	}
	category, err := s.categories.GetByID(ctx, *draft.CategoryID)
	if err != nil {
		logger.Warn("Failed to resolve category name",
			zap.Int("category_id", *draft.CategoryID),
			zap.Error(err))
		return
	}
	draft.CategoryName = category.Name
}
