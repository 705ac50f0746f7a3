package domain

import (
	"errors"
	"fmt"
)

// ErrAreaCodeNotFound means the Eircode failed to geocode. It is terminal
// for the submission: no document is generated past this point.
var ErrAreaCodeNotFound = errors.New("eircode could not be resolved")

// ConfigError reports a missing credential or setting. It is raised before
// any network activity is attempted.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
