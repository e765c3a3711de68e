package sdtm

import (
	"errors"
	"testing"
	"time"

	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

func rawRecord() *cdash.DemographicRecord {
	return &cdash.DemographicRecord{
		StudyID:   "S1",
		SubjectID: "001",
		BirthDate: cdisc.Str("1954-03-12"),
		Age:       cdisc.Int(70),
		AgeUnit:   terminology.AgeUnitYears,
		Sex:       cdisc.Str(terminology.SexFemale),
		Ethnicity: cdisc.Str(terminology.EthnicNotHispanic),
		Race:      cdisc.Str(terminology.RaceWhite),
	}
}

func TestMapDemographic_Basics(t *testing.T) {
	dm, err := MapDemographic(rawRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dm.Domain != "DM" {
		t.Errorf("DOMAIN = %q, want DM", dm.Domain)
	}
	if dm.USubjID != "S1-001" {
		t.Errorf("USUBJID = %q, want S1-001", dm.USubjID)
	}
	if dm.StudyID != "S1" || dm.SubjectID != "001" {
		t.Errorf("identifiers not copied: %q %q", dm.StudyID, dm.SubjectID)
	}
	if dm.BirthDate == nil || !dm.BirthDate.Equal(time.Date(1954, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BRTHDTC = %v, want 1954-03-12", dm.BirthDate)
	}
	if dm.Age == nil || *dm.Age != 70 {
		t.Errorf("AGE = %v, want 70", dm.Age)
	}
}

func TestMapDemographic_EmptyIdentifiers(t *testing.T) {
	for _, tc := range []struct {
		name  string
		study string
		subj  string
	}{
		{"empty study", "", "001"},
		{"empty subject", "S1", ""},
		{"whitespace study", "   ", "001"},
		{"whitespace subject", "S1", "  "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawRecord()
			raw.StudyID = tc.study
			raw.SubjectID = tc.subj
			_, err := MapDemographic(raw)
			var ire *cdisc.InvalidRecordError
			if !errors.As(err, &ire) {
				t.Fatalf("expected InvalidRecordError, got %v", err)
			}
		})
	}
}

func TestMapDemographic_USubjIDInjective(t *testing.T) {
	seen := map[string]bool{}
	for _, pair := range []struct{ study, subj string }{
		{"S1", "001"}, {"S1", "002"}, {"S2", "001"}, {"S10", "01"},
	} {
		raw := rawRecord()
		raw.StudyID = pair.study
		raw.SubjectID = pair.subj
		dm, err := MapDemographic(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[dm.USubjID] {
			t.Errorf("USUBJID %q collides", dm.USubjID)
		}
		seen[dm.USubjID] = true
	}
}

func TestMapDemographic_RacePassthrough(t *testing.T) {
	for _, race := range []string{
		terminology.RaceWhite,
		terminology.RaceBlack,
		terminology.RaceAsian,
		terminology.RaceAmericanIndian,
		terminology.RacePacificIslander,
		terminology.RaceMultiple,
	} {
		raw := rawRecord()
		raw.Race = cdisc.Str(race)
		dm, err := MapDemographic(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dm.RaceRecoded == nil || *dm.RaceRecoded != race {
			t.Errorf("race %q: RACEREC = %v, want identity", race, dm.RaceRecoded)
		}
	}
}

func TestMapDemographic_RaceRecode(t *testing.T) {
	cases := []struct {
		race      string
		raceOther *string
		want      string
	}{
		{terminology.RaceOther, cdisc.Str("Caucasian"), terminology.RaceWhite},
		{terminology.RaceUnknown, cdisc.Str("Black American"), terminology.RaceBlack},
		{terminology.RaceOther, cdisc.Str("pacific islander"), terminology.RacePacificIslander},
		{terminology.RaceOther, cdisc.Str("Martian"), terminology.RaceOther},
		{terminology.RaceOther, nil, terminology.RaceOther},
		{terminology.RaceUnknown, nil, terminology.RaceUnknown},
		{terminology.RaceUnknown, cdisc.Str(""), terminology.RaceUnknown},
	}
	for _, tc := range cases {
		raw := rawRecord()
		raw.Race = cdisc.Str(tc.race)
		raw.RaceOther = tc.raceOther
		dm, err := MapDemographic(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dm.RaceRecoded == nil || *dm.RaceRecoded != tc.want {
			t.Errorf("race=%q other=%v: RACEREC = %v, want %q",
				tc.race, tc.raceOther, dm.RaceRecoded, tc.want)
		}
		// Traceability: the collected values are never altered.
		if dm.Race == nil || *dm.Race != tc.race {
			t.Errorf("RACE mutated: %v", dm.Race)
		}
		if (dm.RaceOther == nil) != (tc.raceOther == nil) {
			t.Errorf("RACEOTH presence changed")
		}
	}
}

func TestMapDemographic_MissingOptionalFields(t *testing.T) {
	raw := &cdash.DemographicRecord{StudyID: "S1", SubjectID: "001", AgeUnit: terminology.AgeUnitYears}
	dm, err := MapDemographic(raw)
	if err != nil {
		t.Fatalf("missing optional fields must not error: %v", err)
	}
	if dm.BirthDate != nil || dm.Age != nil || dm.Sex != nil ||
		dm.Ethnicity != nil || dm.Race != nil || dm.RaceRecoded != nil {
		t.Error("missing fields must propagate as missing")
	}
}

func TestMapDemographic_MalformedBirthDate(t *testing.T) {
	for _, bad := range []string{"12/03/1954", "1954-13-01", "yesterday", "1954"} {
		raw := rawRecord()
		raw.BirthDate = cdisc.Str(bad)
		_, err := MapDemographic(raw)
		var ire *cdisc.InvalidRecordError
		if !errors.As(err, &ire) {
			t.Errorf("birth_date %q: expected InvalidRecordError, got %v", bad, err)
		}
	}
}

func TestMapDemographic_Pure(t *testing.T) {
	raw := rawRecord()
	raw.Race = cdisc.Str(terminology.RaceOther)
	raw.RaceOther = cdisc.Str("Caucasian")

	before := *raw
	dm1, err := MapDemographic(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dm2, err := MapDemographic(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *raw.Race != *before.Race || *raw.RaceOther != *before.RaceOther {
		t.Error("input record was modified")
	}
	if *dm1.RaceRecoded != *dm2.RaceRecoded || dm1.USubjID != dm2.USubjID {
		t.Error("mapping is not deterministic")
	}
	// Output must not alias input storage.
	*dm1.Sex = "X"
	if *raw.Sex == "X" {
		t.Error("output shares pointer storage with input")
	}
}
