package wizard

import (
	"strings"
	"testing"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func draftWithDescription(desc string) *models.ApplicationDraft {
	return &models.ApplicationDraft{Description: desc}
}

func TestValidateDescription_Bounds(t *testing.T) {
	// 9 runes fails, 10 passes
	short := strings.Repeat("а", 9)
	res := ValidateField(draftWithDescription(short), FieldDescription)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldDescription, res.Field)
	assert.Contains(t, res.Message, "минимум")

	res = ValidateField(draftWithDescription(strings.Repeat("а", 10)), FieldDescription)
	assert.True(t, res.Valid)

	// 2000 runes passes, 2001 fails with a different message
	res = ValidateField(draftWithDescription(strings.Repeat("б", 2000)), FieldDescription)
	assert.True(t, res.Valid)

	res = ValidateField(draftWithDescription(strings.Repeat("б", 2001)), FieldDescription)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "максимум")
}

func TestValidateDescription_TrimsWhitespace(t *testing.T) {
	// Padding does not help a too-short description
	res := ValidateField(draftWithDescription("  краткое  "+strings.Repeat(" ", 20)), FieldDescription)
	assert.False(t, res.Valid)
}

func TestValidateDescription_CountsRunesNotBytes(t *testing.T) {
	// 10 Cyrillic characters are 20 bytes but must pass the lower bound
	res := ValidateField(draftWithDescription("привет мир"), FieldDescription)
	assert.True(t, res.Valid)
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+79991234567", true},
		{"+7 999 123-45-67", true},
		{"8 (999) 123 45 67", true},
		{"123", false},
		{"", false},
		{"+7999123456", false}, // 10 digits
	}

	for _, tt := range tests {
		res := ValidateField(&models.ApplicationDraft{Phone: tt.phone}, FieldPhone)
		assert.Equal(t, tt.valid, res.Valid, "phone %q", tt.phone)
	}
}

func TestValidateEmail_Optional(t *testing.T) {
	res := ValidateField(&models.ApplicationDraft{Email: ""}, FieldEmail)
	assert.True(t, res.Valid)

	res = ValidateField(&models.ApplicationDraft{Email: "ivan@example.com"}, FieldEmail)
	assert.True(t, res.Valid)

	res = ValidateField(&models.ApplicationDraft{Email: "not-an-email"}, FieldEmail)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldEmail, res.Field)
}

func TestValidateCategory_NilFails(t *testing.T) {
	res := ValidateField(&models.ApplicationDraft{}, FieldCategory)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldCategory, res.Field)

	three := 3
	res = ValidateField(&models.ApplicationDraft{CategoryID: &three}, FieldCategory)
	assert.True(t, res.Valid)
}

func TestValidateContactMethod(t *testing.T) {
	res := ValidateField(&models.ApplicationDraft{ContactMethod: models.ContactMethodTelegram}, FieldContactMethod)
	assert.True(t, res.Valid)

	res = ValidateField(&models.ApplicationDraft{ContactMethod: "pigeon"}, FieldContactMethod)
	assert.False(t, res.Valid)
}

func TestValidateStep_RequiredFieldsPerStep(t *testing.T) {
	draft := &models.ApplicationDraft{}

	// Step 1 requires a category
	res := ValidateStep(draft, StepCategory)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldCategory, res.Field)

	// Step 2 has no hard requirement even with an empty description
	res = ValidateStep(draft, StepDescription)
	assert.True(t, res.Valid)

	// Step 3 requires name, phone, contact method in that order
	res = ValidateStep(draft, StepContact)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldName, res.Field)

	draft.Name = "Иван"
	res = ValidateStep(draft, StepContact)
	assert.Equal(t, FieldPhone, res.Field)

	draft.Phone = "+79991234567"
	res = ValidateStep(draft, StepContact)
	assert.Equal(t, FieldContactMethod, res.Field)

	draft.ContactMethod = models.ContactMethodTelegram
	res = ValidateStep(draft, StepContact)
	assert.True(t, res.Valid)

	// Step 4 (review) validates nothing on its own
	res = ValidateStep(&models.ApplicationDraft{}, StepReview)
	assert.True(t, res.Valid)
}

func TestValidateDraft_FullSubmissionRules(t *testing.T) {
	three := 3
	draft := &models.ApplicationDraft{
		CategoryID:    &three,
		Description:   "Спор о границах участка с соседом",
		Name:          "Иван",
		Phone:         "+79991234567",
		ContactMethod: models.ContactMethodTelegram,
	}

	res := ValidateDraft(draft)
	assert.True(t, res.Valid)

	// Unlike step validation, the full check enforces description bounds
	draft.Description = "коротко"
	res = ValidateDraft(draft)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldDescription, res.Field)

	// And the optional email shape
	draft.Description = "Спор о границах участка с соседом"
	draft.Email = "bad email"
	res = ValidateDraft(draft)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldEmail, res.Field)
}
