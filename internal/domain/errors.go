package domain

import (
	"errors"
	"strings"
)

const (
	MsgMissingColumns = "Il file consolidato deve contenere almeno le colonne 'Supplier' e 'FTEs'."
	MsgMissingStatus  = "Il file consolidato non contiene la colonna di stato '%s'."
	MsgEmptySelection = "Nessun supplier con FTE totale tra 0 e 3 trovato nel consolidato."
)

var (
	ErrNoSession      = errors.New("session not found")
	ErrNoUpload       = errors.New("no file uploaded")
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrEmptySelection = errors.New(MsgEmptySelection)
)

// ValidationError rejects an input before any processing. Message is meant
// for the user.
type ValidationError struct {
	Message string
	Missing []string
}

func NewValidationError(message string, missing ...string) *ValidationError {
	return &ValidationError{Message: message, Missing: missing}
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return e.Message + " (mancanti: " + strings.Join(e.Missing, ", ") + ")"
}
