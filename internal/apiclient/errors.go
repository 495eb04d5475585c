package apiclient

import "fmt"

// fallbackMessage replaces error bodies the backend failed to shape as
// JSON with a "message" field.
const fallbackMessage = "the energy service returned an error"

// Error is a non-2xx response from the energy API, surfaced to views as-is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("energy api: %d %s", e.Status, e.Message)
}
