package search

import "fmt"

// A ConfigError reports an invalid search bound.
type ConfigError struct {
	Param string
	Value int
	Min   int
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid bound %s=%d: must be at least %d", e.Param, e.Value, e.Min)
}

// An EmptySpaceError reports that the candidate rule space has zero
// members, so no model can be built at all.
type EmptySpaceError struct {
	Reason string
}

func (e EmptySpaceError) Error() string {
	return fmt.Sprintf("empty search space: %s", e.Reason)
}
