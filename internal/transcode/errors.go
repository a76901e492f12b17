package transcode

import (
	"errors"
	"fmt"
)

// ErrInputRead marks a failure to read the source into the engine.
// Retryable by resubmitting; the file and region survive.
var ErrInputRead = errors.New("failed to read source input")

// EncodeError reports a failed encode for one profile. The coordinator
// treats the device profile's failure as non-fatal and the universal
// profile's as fatal.
type EncodeError struct {
	Profile string
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode failed for profile %s: %v", e.Profile, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
