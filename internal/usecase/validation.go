package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validationFailure folds field errors into one domain error.
func validationFailure(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return NewDomainError(CodeValidation, strings.Join(parts, "; "))
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.FirstName) == "" && strings.TrimSpace(input.LastName) == "" &&
		strings.TrimSpace(input.Phone) == "" && strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"lead", "needs a name, phone or email"})
	}
	if e := strings.TrimSpace(input.Email); e != "" {
		if _, err := mail.ParseAddress(e); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	errors = appendEnumErrors(errors, ptrIfSet(input.Status), ptrIfSet(input.LeadType),
		ptrIfSet(input.RelationshipRanking), ptrIfSet(input.UrgencyRanking))
	errors = appendDateErrors(errors, map[string]*string{
		"firstAttemptDate":   &input.FirstAttemptDate,
		"nextEvaluationDate": &input.NextEvaluationDate,
	})
	return errors
}

func ValidateAdminUpdateInput(input AdminUpdateInput) []ValidationError {
	var errors []ValidationError

	if input.Email != nil {
		if e := strings.TrimSpace(*input.Email); e != "" {
			if _, err := mail.ParseAddress(e); err != nil {
				errors = append(errors, ValidationError{"email", "is invalid"})
			}
		}
	}
	errors = appendEnumErrors(errors, input.Status, input.LeadType, input.RelationshipRanking, input.UrgencyRanking)
	errors = appendDateErrors(errors, map[string]*string{
		"firstAttemptDate":   input.FirstAttemptDate,
		"nextEvaluationDate": input.NextEvaluationDate,
	})
	return errors
}

func ValidateAgentUpdateInput(input AgentUpdateInput) []ValidationError {
	var errors []ValidationError
	errors = appendEnumErrors(errors, nil, nil, input.RelationshipRanking, input.UrgencyRanking)
	errors = appendDateErrors(errors, map[string]*string{
		"firstAttemptDate":   input.FirstAttemptDate,
		"nextEvaluationDate": input.NextEvaluationDate,
	})
	return errors
}

func appendEnumErrors(errors []ValidationError, status, leadType, relationship, urgency *string) []ValidationError {
	if status != nil && !entity.LeadStatus(*status).Valid() {
		errors = append(errors, ValidationError{"status", "must be one of engagement, relationship, short_term, long_term, do_not_call"})
	}
	if leadType != nil && !entity.LeadType(*leadType).Valid() {
		errors = append(errors, ValidationError{"leadType", "must be one of buyer, seller, buyer_seller, renter"})
	}
	if relationship != nil && !entity.RelationshipRanking(*relationship).Valid() {
		errors = append(errors, ValidationError{"relationshipRanking", "must be one of 0, 18, 34, 56, 78, 100"})
	}
	if urgency != nil && !entity.UrgencyRanking(*urgency).Valid() {
		errors = append(errors, ValidationError{"urgencyRanking", "must be one of very_low, low, unsure, likely, very_likely"})
	}
	return errors
}

func appendDateErrors(errors []ValidationError, dates map[string]*string) []ValidationError {
	for _, field := range []string{"firstAttemptDate", "nextEvaluationDate"} {
		v := dates[field]
		if v == nil {
			continue
		}
		if _, err := entity.ParseTimestamp(*v); err != nil {
			errors = append(errors, ValidationError{field, "must be a valid date (YYYY-MM-DD)"})
		}
	}
	return errors
}

func ptrIfSet(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// parseDatePtr turns an optional raw date into a patch value. Callers have
// already validated the input.
func parseDatePtr(raw *string) *entity.Timestamp {
	if raw == nil {
		return nil
	}
	ts, _ := entity.ParseTimestamp(*raw)
	return &ts
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
