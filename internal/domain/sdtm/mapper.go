package sdtm

import (
	"strings"
	"time"

	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

// MapDemographic derives one SDTM DM record from a raw CDASH record. It is a
// pure function: no I/O, no logging, no randomness, and the input record is
// never modified. Missing optional fields pass through as missing; integrity
// violations (empty identifiers, malformed birth dates) return
// *cdisc.InvalidRecordError.
func MapDemographic(raw *cdash.DemographicRecord) (*Demographic, error) {
	if strings.TrimSpace(raw.StudyID) == "" {
		return nil, &cdisc.InvalidRecordError{
			Subject: raw.SubjectID,
			Field:   "study_id",
			Reason:  "must be a non-empty string",
		}
	}
	if strings.TrimSpace(raw.SubjectID) == "" {
		return nil, &cdisc.InvalidRecordError{
			Subject: raw.StudyID,
			Field:   "subject_id",
			Reason:  "must be a non-empty string",
		}
	}

	usubjid := raw.StudyID + cdisc.USubjIDSep + raw.SubjectID

	birth, err := parseBirthDate(usubjid, raw.BirthDate)
	if err != nil {
		return nil, err
	}

	return &Demographic{
		StudyID:     raw.StudyID,
		Domain:      cdisc.DomainDM,
		USubjID:     usubjid,
		SubjectID:   raw.SubjectID,
		BirthDate:   birth,
		Age:         cdisc.CopyInt(raw.Age),
		AgeUnit:     raw.AgeUnit,
		Sex:         cdisc.CopyStr(raw.Sex),
		Ethnicity:   cdisc.CopyStr(raw.Ethnicity),
		Race:        cdisc.CopyStr(raw.Race),
		RaceOther:   cdisc.CopyStr(raw.RaceOther),
		RaceRecoded: recodeRace(raw.Race, raw.RaceOther),
	}, nil
}

// recodeRace reconciles OTHER/UNKNOWN race values against the free-text
// alias table. Coded races pass through unchanged; unrecognized or absent
// free text degrades to the collected value, never to an error.
func recodeRace(race, raceOther *string) *string {
	if race == nil {
		return nil
	}
	recoded := *race
	if recoded == terminology.RaceOther || recoded == terminology.RaceUnknown {
		if raceOther != nil {
			if canonical, ok := terminology.NormalizeRace(*raceOther); ok {
				recoded = canonical
			}
		}
	}
	return &recoded
}

func parseBirthDate(usubjid string, collected *string) (*time.Time, error) {
	if collected == nil {
		return nil, nil
	}
	t, err := time.Parse(cdisc.BirthDateLayout, strings.TrimSpace(*collected))
	if err != nil {
		return nil, &cdisc.InvalidRecordError{
			Subject: usubjid,
			Field:   "birth_date",
			Reason:  "malformed date " + strings.TrimSpace(*collected),
		}
	}
	return &t, nil
}
