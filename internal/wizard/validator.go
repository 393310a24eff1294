package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexpravo/intake-api/internal/models"
)

// Field bounds for the problem description
const (
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	NameMinLen        = 2
	PhoneMinDigits    = 11
)

// Draft field names as used on the wire and in validation results
const (
	FieldCategory      = "category_id"
	FieldDescription   = "description"
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	FieldContactMethod = "contact_method"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldResult is the outcome of validating a single field. Messages are
// user-facing; validation never returns a Go error.
type FieldResult struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok() FieldResult {
	return FieldResult{Valid: true}
}

func invalid(field, message string) FieldResult {
	return FieldResult{Valid: false, Field: field, Message: message}
}

// ValidateField checks a single draft field by name. Unknown fields are
// considered valid so new optional fields never block the wizard.
func ValidateField(draft *models.ApplicationDraft, field string) FieldResult {
	switch field {
	case FieldCategory:
		return validateCategory(draft)
	case FieldDescription:
		return validateDescription(draft.Description)
	case FieldName:
		return validateName(draft.Name)
	case FieldPhone:
		return validatePhone(draft.Phone)
	case FieldEmail:
		return validateEmail(draft.Email)
	case FieldContactMethod:
		return validateContactMethod(draft.ContactMethod)
	}
	return ok()
}

func validateCategory(draft *models.ApplicationDraft) FieldResult {
	if draft.CategoryID == nil {
		return invalid(FieldCategory, "Выберите категорию услуги")
	}
	return ok()
}

func validateDescription(description string) FieldResult {
	length := utf8.RuneCountInString(strings.TrimSpace(description))
	if length < DescriptionMinLen {
		return invalid(FieldDescription,
			fmt.Sprintf("Опишите проблему подробнее (минимум %d символов)", DescriptionMinLen))
	}
	if length > DescriptionMaxLen {
		return invalid(FieldDescription,
			fmt.Sprintf("Описание слишком длинное (максимум %d символов)", DescriptionMaxLen))
	}
	return ok()
}

func validateName(name string) FieldResult {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < NameMinLen {
		return invalid(FieldName, "Укажите ваше имя")
	}
	return ok()
}

// validatePhone strips everything but digits (a leading + is tolerated but
// not counted) and requires at least 11 digits, enough for +7 numbers with
// country code.
func validatePhone(phone string) FieldResult {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < PhoneMinDigits {
		return invalid(FieldPhone, "Укажите корректный номер телефона")
	}
	return ok()
}

// validateEmail treats the field as optional: empty is valid, anything
// present must look like local@domain.tld.
func validateEmail(email string) FieldResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return ok()
	}
	if !emailPattern.MatchString(email) {
		return invalid(FieldEmail, "Укажите корректный email")
	}
	return ok()
}

func validateContactMethod(method models.ContactMethod) FieldResult {
	if !method.IsValid() {
		return invalid(FieldContactMethod, "Выберите способ связи")
	}
	return ok()
}

// stepFields lists the fields each step requires before advancing.
// Step 2 collects subcategory/description but has no hard requirement of
// its own; the description bound is enforced at final submission.
var stepFields = map[int][]string{
	StepCategory:    {FieldCategory},
	StepDescription: {},
	StepContact:     {FieldName, FieldPhone, FieldContactMethod},
	StepReview:      {},
}

// ValidateStep returns the first unmet rule for a step, or a valid result
func ValidateStep(draft *models.ApplicationDraft, step int) FieldResult {
	for _, field := range stepFields[step] {
		if res := ValidateField(draft, field); !res.Valid {
			return res
		}
	}
	return ok()
}

// ValidateDraft runs full-draft validation as performed right before
// submission: everything the steps require plus the description bounds
// and the optional email shape.
func ValidateDraft(draft *models.ApplicationDraft) FieldResult {
	for _, field := range []string{
		FieldCategory,
		FieldDescription,
		FieldName,
		FieldPhone,
		FieldEmail,
		FieldContactMethod,
	} {
		if res := ValidateField(draft, field); !res.Valid {
			return res
		}
	}
	return ok()
}
