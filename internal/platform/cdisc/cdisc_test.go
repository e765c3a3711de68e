package cdisc

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestInvalidRecordError_Message(t *testing.T) {
	err := &InvalidRecordError{Subject: "S1-001", Field: "age", Reason: "must not be negative"}
	want := "invalid record S1-001: age: must not be negative"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noSubj := &InvalidRecordError{Field: "subject_id", Reason: "must not be empty"}
	if got := noSubj.Error(); got != "invalid record: subject_id: must not be empty" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsInvalidRecord(t *testing.T) {
	base := &InvalidRecordError{Field: "sex", Reason: "bad"}
	if !IsInvalidRecord(base) {
		t.Error("direct error not detected")
	}
	if !IsInvalidRecord(fmt.Errorf("map record: %w", base)) {
		t.Error("wrapped error not detected")
	}
	if IsInvalidRecord(errors.New("disk full")) {
		t.Error("unrelated error detected")
	}
	if IsInvalidRecord(nil) {
		t.Error("nil detected")
	}
}

func TestCopyHelpers(t *testing.T) {
	if CopyStr(nil) != nil || CopyInt(nil) != nil || CopyDate(nil) != nil {
		t.Fatal("nil input must copy to nil")
	}

	s := Str("F")
	cs := CopyStr(s)
	*s = "M"
	if *cs != "F" {
		t.Errorf("CopyStr aliases its input: %q", *cs)
	}

	n := Int(40)
	cn := CopyInt(n)
	*n = 41
	if *cn != 40 {
		t.Errorf("CopyInt aliases its input: %d", *cn)
	}

	d := Date(time.Date(1984, 3, 12, 0, 0, 0, 0, time.UTC))
	cd := CopyDate(d)
	*d = d.AddDate(1, 0, 0)
	if cd.Year() != 1984 {
		t.Errorf("CopyDate aliases its input: %v", cd)
	}
}
