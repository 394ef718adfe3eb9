package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"discovery-backend/models"
)

var (
	ErrNilCase            = errors.New("case is nil")
	ErrNoHeadOfHousehold  = errors.New("case has no head-of-household plaintiff")
	ErrNoDefendants       = errors.New("case has no defendants")
	ErrNoRule             = errors.New("issue option has no flag rule")
	ErrUnmappedFlag       = errors.New("derived flag has no interrogatory count")
	ErrFirstSetOverflow   = errors.New("first-set-only interrogatories exceed the set ceiling")
	ErrFlagExceedsCeiling = errors.New("flag count exceeds the set ceiling")
)

// ValidationError is a case-wide input error. It fails the whole run before
// any set is produced.
type ValidationError struct {
	Plaintiff string
	Category  string
	Option    string
	Err       error
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Plaintiff != "" {
		parts = append(parts, "plaintiff "+quote(e.Plaintiff))
	}
	if e.Category != "" {
		parts = append(parts, "category "+quote(e.Category))
	}
	if e.Option != "" {
		parts = append(parts, "option "+quote(e.Option))
	}
	if len(parts) == 0 {
		return "invalid case: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid case (%s): %v", strings.Join(parts, ", "), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigError means a profile definition cannot serve a pair. It fails only
// the (pair, profile) it occurred in.
type ConfigError struct {
	Profile models.ProfileType
	Pair    string
	Flag    string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("profile %s", e.Profile)
	if e.Pair != "" {
		msg += ", pair " + quote(e.Pair)
	}
	if e.Flag != "" {
		msg += ", flag " + quote(e.Flag)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a case-wide input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
