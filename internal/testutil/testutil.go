package testutil

import "github.com/pkg/errors"

// ErrorsAs is errors.As from github.com/pkg/errors extended to accept nil.
// The first argument is the got error, the second the wanted one.
func ErrorsAs(err error, target interface{}) bool {
	// nil vs nil
	if err == target {
		return true
	}

	// errors.As panics on a nil target, guard it
	if err != nil && target == nil {
		return false
	}

	return errors.As(err, &target)
}
