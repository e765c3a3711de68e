// Package terminology provides the CDISC controlled terminology used by the
// demographics pipeline: race, sex, and ethnicity codelists plus the race
// free-text alias table and its normalization helper.
package terminology

import "strings"

// Sex codes (CDISC SEX codelist, C66731).
const (
	SexMale    = "M"
	SexFemale  = "F"
	SexUnknown = "U"
)

// Race codes (CDISC RACE codelist, C74457) plus the OTHER/UNKNOWN collection
// values that carry free text in RACEOTH.
const (
	RaceAmericanIndian  = "AMERICAN INDIAN OR ALASKA NATIVE"
	RaceAsian           = "ASIAN"
	RaceBlack           = "BLACK OR AFRICAN AMERICAN"
	RacePacificIslander = "NATIVE HAWAIIAN OR OTHER PACIFIC ISLANDER"
	RaceWhite           = "WHITE"
	RaceMultiple        = "MULTIPLE"
	RaceOther           = "OTHER"
	RaceUnknown         = "UNKNOWN"
)

// Ethnicity codes (CDISC ETHNIC codelist, C66790).
const (
	EthnicHispanic    = "HISPANIC OR LATINO"
	EthnicNotHispanic = "NOT HISPANIC OR LATINO"
	EthnicNotReported = "NOT REPORTED"
	EthnicUnknown     = "UNKNOWN"
)

// AgeUnitYears is the only age unit this pipeline collects.
const AgeUnitYears = "YEARS"

// RaceCodeList is the full race codelist in submission order.
var RaceCodeList = []string{
	RaceAmericanIndian,
	RaceAsian,
	RaceBlack,
	RacePacificIslander,
	RaceWhite,
	RaceMultiple,
	RaceOther,
	RaceUnknown,
}

// SexCodeList is the sex codelist in submission order.
var SexCodeList = []string{SexMale, SexFemale, SexUnknown}

// EthnicCodeList is the ethnicity codelist in submission order.
var EthnicCodeList = []string{
	EthnicHispanic,
	EthnicNotHispanic,
	EthnicNotReported,
	EthnicUnknown,
}

// raceAliases maps recognized RACEOTH free-text spellings to canonical race
// codes. Keys are normalized (upper case, collapsed whitespace). The table is
// deliberately data, not code: extend it here, never in the mapper.
var raceAliases = map[string]string{
	"CAUCASIAN":        RaceWhite,
	"WHITE CAUCASIAN":  RaceWhite,
	"EUROPEAN":         RaceWhite,
	"BLACK":            RaceBlack,
	"BLACK AMERICAN":   RaceBlack,
	"AFRICAN AMERICAN": RaceBlack,
	"AFRO-AMERICAN":    RaceBlack,
	"ASIAN AMERICAN":   RaceAsian,
	"EAST ASIAN":       RaceAsian,
	"SOUTH ASIAN":      RaceAsian,
	"PACIFIC ISLANDER": RacePacificIslander,
	"NATIVE HAWAIIAN":  RacePacificIslander,
	"NATIVE AMERICAN":  RaceAmericanIndian,
	"AMERICAN INDIAN":  RaceAmericanIndian,
	"ALASKA NATIVE":    RaceAmericanIndian,
	"MIXED":            RaceMultiple,
	"MIXED RACE":       RaceMultiple,
}

// NormalizeRace resolves a RACEOTH free-text value against the alias table.
// Matching is case-insensitive and ignores surrounding and repeated
// whitespace. Unrecognized text returns ok=false and never an error: the
// caller falls back to the collected race value.
func NormalizeRace(freeText string) (string, bool) {
	canonical, ok := raceAliases[normalizeKey(freeText)]
	return canonical, ok
}

// IsCodedRace reports whether s is a member of the race codelist.
func IsCodedRace(s string) bool {
	for _, code := range RaceCodeList {
		if s == code {
			return true
		}
	}
	return false
}

// IsReportableSex reports whether s is a collected male/female value, the
// condition for safety-population membership.
func IsReportableSex(s string) bool {
	return s == SexMale || s == SexFemale
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
