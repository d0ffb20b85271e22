/*
errors.go - Centralized error types

PURPOSE:
  The calculation pipeline itself is total: absence of applicable data is
  a defined empty or zero result, never an error. The sentinels here exist
  for the collaborator layer (stores, HTTP handlers) that looks records up
  by id and must distinguish "missing" from "broken".

USAGE:
    if errors.Is(err, engine.ErrUserNotFound) {
        // 404, not 500
    }
*/
package engine

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRuleNotFound is returned when a referenced rule doesn't exist.
	ErrRuleNotFound = errors.New("rule not found")
)

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrRuleNotFound)
}
