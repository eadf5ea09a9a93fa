// Package store provides the CounterRepository backends. Every backend keeps
// exactly one record with the fields date, today, yesterday and streak, and
// overwrites it wholesale on Save.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"smokebuddy/internal/types"
)

var recordValidator = validator.New()

// encodeRecord renders the record as the pretty-printed JSON document shared
// by the file and object backends.
func encodeRecord(rec *types.CounterRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, types.NewStorageError("failed to encode counter record", err)
	}
	return append(data, '\n'), nil
}

// decodeRecord parses and validates a stored JSON document.
func decodeRecord(data []byte, source string) (*types.CounterRecord, error) {
	var rec types.CounterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, types.NewStorageError(fmt.Sprintf("counter record at %s is not valid JSON", source), err)
	}
	if err := validateRecord(&rec); err != nil {
		return nil, types.NewStorageError(fmt.Sprintf("counter record at %s is invalid", source), err)
	}
	return &rec, nil
}

// validateRecord rejects records that violate the non-negative invariants or
// carry a malformed date.
func validateRecord(rec *types.CounterRecord) error {
	if err := recordValidator.Struct(rec); err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidRecord, "counter record failed validation", err)
	}
	return nil
}
