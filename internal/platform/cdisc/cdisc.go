// Package cdisc holds the small set of constants, error types, and helpers
// shared by the CDASH, SDTM, and ADaM domain packages.
package cdisc

import (
	"errors"
	"fmt"
	"time"
)

// DomainDM is the SDTM dataset category label for demographics.
const DomainDM = "DM"

// USubjIDSep joins STUDYID and SUBJID into USUBJID. The generator only emits
// identifiers without the separator character, so the join stays injective.
const USubjIDSep = "-"

// Yes/No flag values used by population flags.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// BirthDateLayout is the collected birth-date layout (complete ISO 8601 date).
const BirthDateLayout = "2006-01-02"

// InvalidRecordError reports a data-integrity violation in a single record:
// empty identifiers, negative ages, malformed dates. Missing optional fields
// are never an InvalidRecordError.
type InvalidRecordError struct {
	Subject string // best available subject identifier, may be empty
	Field   string
	Reason  string
}

func (e *InvalidRecordError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid record %s: %s: %s", e.Subject, e.Field, e.Reason)
}

// IsInvalidRecord reports whether err wraps an InvalidRecordError.
func IsInvalidRecord(err error) bool {
	var ire *InvalidRecordError
	return errors.As(err, &ire)
}

// Str returns a pointer to s. Used for optional record fields.
func Str(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Date returns a pointer to t.
func Date(t time.Time) *time.Time { return &t }

// CopyStr clones an optional string so derived records never share memory
// with their source.
func CopyStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CopyInt clones an optional int.
func CopyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CopyDate clones an optional time.
func CopyDate(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
