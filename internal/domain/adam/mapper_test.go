package adam

import (
	"errors"
	"testing"

	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

func dmRecord() *sdtm.Demographic {
	return &sdtm.Demographic{
		StudyID:     "S1",
		Domain:      cdisc.DomainDM,
		USubjID:     "S1-001",
		SubjectID:   "001",
		Age:         cdisc.Int(70),
		AgeUnit:     terminology.AgeUnitYears,
		Sex:         cdisc.Str(terminology.SexFemale),
		Ethnicity:   cdisc.Str(terminology.EthnicNotHispanic),
		Race:        cdisc.Str(terminology.RaceOther),
		RaceOther:   cdisc.Str("Caucasian"),
		RaceRecoded: cdisc.Str(terminology.RaceWhite),
	}
}

func TestMapSubjectLevel_AgeGroups(t *testing.T) {
	cases := []struct {
		age  int
		want string
	}{
		{0, AgeGroupUnder18},
		{17, AgeGroupUnder18},
		{18, AgeGroup18To65},
		{40, AgeGroup18To65},
		{65, AgeGroup18To65},
		{66, AgeGroupOver65},
		{90, AgeGroupOver65},
	}
	for _, tc := range cases {
		dm := dmRecord()
		dm.Age = cdisc.Int(tc.age)
		rec, err := MapSubjectLevel(dm)
		if err != nil {
			t.Fatalf("age %d: unexpected error: %v", tc.age, err)
		}
		if rec.AgeGroup == nil || *rec.AgeGroup != tc.want {
			t.Errorf("age %d: AGEGR1 = %v, want %q", tc.age, rec.AgeGroup, tc.want)
		}
	}
}

func TestMapSubjectLevel_MissingAge(t *testing.T) {
	dm := dmRecord()
	dm.Age = nil
	rec, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("missing age must not error: %v", err)
	}
	if rec.AgeGroup != nil {
		t.Errorf("AGEGR1 = %v, want missing", rec.AgeGroup)
	}
}

func TestMapSubjectLevel_NegativeAge(t *testing.T) {
	dm := dmRecord()
	dm.Age = cdisc.Int(-1)
	_, err := MapSubjectLevel(dm)
	var ire *cdisc.InvalidRecordError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRecordError, got %v", err)
	}
	if ire.Field != "age" {
		t.Errorf("error field = %q, want age", ire.Field)
	}
}

// TestMapSubjectLevel_SafetyFlagPolicy pins the strict two-branch rule:
// only collected M/F yields "Y"; a missing sex collapses to "N" exactly like
// an invalid one. Run imputation before the analysis derivation to rescue
// unknown-sex subjects.
func TestMapSubjectLevel_SafetyFlagPolicy(t *testing.T) {
	cases := []struct {
		sex  *string
		want string
	}{
		{cdisc.Str(terminology.SexMale), cdisc.FlagYes},
		{cdisc.Str(terminology.SexFemale), cdisc.FlagYes},
		{cdisc.Str(terminology.SexUnknown), cdisc.FlagNo},
		{cdisc.Str("X"), cdisc.FlagNo},
		{nil, cdisc.FlagNo},
	}
	for _, tc := range cases {
		dm := dmRecord()
		dm.Sex = tc.sex
		rec, err := MapSubjectLevel(dm)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.SafetyFlag != tc.want {
			t.Errorf("sex=%v: SAFFL = %q, want %q", tc.sex, rec.SafetyFlag, tc.want)
		}
	}
}

func TestMapSubjectLevel_CopiesThrough(t *testing.T) {
	dm := dmRecord()
	rec, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StudyID != "S1" || rec.USubjID != "S1-001" || rec.SubjectID != "001" {
		t.Error("identifiers not copied through")
	}
	if rec.Age == nil || *rec.Age != 70 || rec.AgeUnit != terminology.AgeUnitYears {
		t.Error("age fields not copied through")
	}
	if rec.Ethnicity == nil || *rec.Ethnicity != terminology.EthnicNotHispanic {
		t.Error("ethnicity not copied through")
	}
	if rec.Race == nil || *rec.Race != terminology.RaceOther {
		t.Error("collected race not copied through")
	}
	if rec.RaceRecoded == nil || *rec.RaceRecoded != terminology.RaceWhite {
		t.Error("reconciled race not copied through")
	}
}

func TestMapSubjectLevel_Idempotent(t *testing.T) {
	dm := dmRecord()
	first, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first.AgeGroup != *second.AgeGroup || first.SafetyFlag != second.SafetyFlag {
		t.Error("re-deriving the same record must yield the same result")
	}
	if dm.Age == nil || *dm.Age != 70 {
		t.Error("input record was modified")
	}
}

func TestEndToEnd_RecodedElderlyFemale(t *testing.T) {
	raw := rawFixture("S1", "001", cdisc.Int(70), cdisc.Str(terminology.SexFemale),
		cdisc.Str(terminology.RaceOther), cdisc.Str("Caucasian"))
	dm, err := sdtm.MapDemographic(raw)
	if err != nil {
		t.Fatalf("cdash->sdtm: %v", err)
	}
	if dm.USubjID != "S1-001" || dm.Domain != "DM" {
		t.Fatalf("standardized record wrong: %+v", dm)
	}
	if dm.RaceRecoded == nil || *dm.RaceRecoded != terminology.RaceWhite {
		t.Fatalf("RACEREC = %v, want WHITE", dm.RaceRecoded)
	}

	rec, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("sdtm->adam: %v", err)
	}
	if rec.AgeGroup == nil || *rec.AgeGroup != AgeGroupOver65 {
		t.Errorf("AGEGR1 = %v, want >65", rec.AgeGroup)
	}
	if rec.SafetyFlag != cdisc.FlagYes {
		t.Errorf("SAFFL = %q, want Y", rec.SafetyFlag)
	}
}

func TestEndToEnd_MissingAgeAndSex(t *testing.T) {
	raw := rawFixture("S1", "002", nil, nil, nil, nil)
	dm, err := sdtm.MapDemographic(raw)
	if err != nil {
		t.Fatalf("cdash->sdtm: %v", err)
	}
	rec, err := MapSubjectLevel(dm)
	if err != nil {
		t.Fatalf("sdtm->adam: %v", err)
	}
	if rec.AgeGroup != nil {
		t.Errorf("AGEGR1 = %v, want missing", rec.AgeGroup)
	}
	if rec.SafetyFlag != cdisc.FlagNo {
		t.Errorf("SAFFL = %q, want N", rec.SafetyFlag)
	}
}

func rawFixture(study, subj string, age *int, sex, race, raceOther *string) *cdash.DemographicRecord {
	return &cdash.DemographicRecord{
		StudyID:   study,
		SubjectID: subj,
		Age:       age,
		AgeUnit:   terminology.AgeUnitYears,
		Sex:       sex,
		Race:      race,
		RaceOther: raceOther,
	}
}
