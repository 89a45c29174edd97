package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
)

const (
	maxDescriptionLength = 200
	maxNotesLength       = 500
)

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", apperrors.ValidationFailed("Description is required", "description must not be empty")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", apperrors.ValidationFailed("Description is too long", fmt.Sprintf("at most %d characters", maxDescriptionLength))
	}
	return description, nil
}

func validateNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return "", apperrors.ValidationFailed("Notes are too long", fmt.Sprintf("at most %d characters", maxNotesLength))
	}
	return notes, nil
}

func validateCategory(c types.TransactionCategory) (types.TransactionCategory, error) {
	if c == "" {
		return types.CategoryOther, nil
	}
	c = types.TransactionCategory(strings.ToLower(string(c)))
	if !c.IsValid() {
		return "", apperrors.ValidationFailed("Invalid category", string(c))
	}
	return c, nil
}

func validateCurrency(code string) (string, error) {
	currency, ok := shared.NormalizeCurrency(code)
	if !ok {
		return "", apperrors.ValidationFailed("Unsupported currency", currency)
	}
	return currency, nil
}

func validateRecurring(r *types.Recurring) error {
	if r == nil || !r.IsRecurring {
		return nil
	}
	if !r.Frequency.IsValid() {
		return apperrors.ValidationFailed("Invalid recurring frequency", string(r.Frequency))
	}
	return nil
}

// normalizeTags lowercases and trims tags, dropping blanks and duplicates.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// toParticipants turns normalized client input into participant shares.
func toParticipants(inputs []types.ParticipantInput) ([]types.Participant, error) {
	out := make([]types.Participant, 0, len(inputs))
	for _, in := range inputs {
		if in.UserID == "" {
			return nil, apperrors.ValidationFailed("Invalid participant", "participant user id is required")
		}
		p := types.Participant{UserID: in.UserID, Percentage: in.Percentage}
		if in.Amount != nil {
			p.Amount = *in.Amount
		}
		out = append(out, p)
	}
	return out, nil
}
