package cdash

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
)

// GenConfig controls the volume and shape of generated mock records.
type GenConfig struct {
	StudyID      string `json:"studyId"`
	SubjectCount int    `json:"subjectCount"`
	Seed         int64  `json:"seed"`
	// ReferenceYear anchors birth dates so the same seed always yields the
	// same records regardless of when the generator runs.
	ReferenceYear int `json:"referenceYear"`
}

// DefaultGenConfig returns a GenConfig with sensible defaults.
func DefaultGenConfig(studyID string) GenConfig {
	return GenConfig{
		StudyID:       studyID,
		SubjectCount:  200,
		Seed:          1,
		ReferenceYear: 2024,
	}
}

// Generator produces reproducible mock demographics records. Same config,
// same records.
type Generator struct {
	cfg GenConfig
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from cfg.Seed.
func NewGenerator(cfg GenConfig) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// raceWeights drives the coded-race draw. A slice keeps draw order stable;
// map iteration order would break reproducibility.
var raceWeights = []struct {
	code   string
	weight int
}{
	{terminology.RaceWhite, 55},
	{terminology.RaceBlack, 15},
	{terminology.RaceAsian, 12},
	{terminology.RaceAmericanIndian, 3},
	{terminology.RacePacificIslander, 2},
	{terminology.RaceMultiple, 3},
	{terminology.RaceOther, 7},
	{terminology.RaceUnknown, 3},
}

// otherRaceSpellings are the free-text values sites enter when they pick
// OTHER or UNKNOWN. A mix of alias-table hits and genuinely unmappable text.
var otherRaceSpellings = []string{
	"Caucasian",
	"caucasian ",
	"Black American",
	"african american",
	"Asian American",
	"Pacific Islander",
	"Native American",
	"Mixed race",
	"Prefer not to say",
	"Human",
	"",
}

// Generate returns cfg.SubjectCount fully collected records with zero-padded
// sequential subject IDs, unique within the study.
func (g *Generator) Generate() []*DemographicRecord {
	records := make([]*DemographicRecord, 0, g.cfg.SubjectCount)
	for i := 0; i < g.cfg.SubjectCount; i++ {
		records = append(records, g.record(i+1))
	}
	return records
}

func (g *Generator) record(seq int) *DemographicRecord {
	age := g.drawAge()
	sex := g.drawSex()
	ethnic := g.drawEthnicity()
	race := g.drawRace()
	birth := g.birthDate(age)

	rec := &DemographicRecord{
		StudyID:   g.cfg.StudyID,
		SubjectID: fmt.Sprintf("%04d", seq),
		BirthDate: &birth,
		Age:       &age,
		AgeUnit:   terminology.AgeUnitYears,
		Sex:       &sex,
		Ethnicity: &ethnic,
		Race:      &race,
	}
	if race == terminology.RaceOther || race == terminology.RaceUnknown {
		spelling := otherRaceSpellings[g.rng.Intn(len(otherRaceSpellings))]
		if spelling != "" {
			rec.RaceOther = &spelling
		}
	}
	return rec
}

func (g *Generator) drawAge() int {
	// Mostly adult enrollment with pediatric and elderly tails.
	switch roll := g.rng.Intn(100); {
	case roll < 8:
		return 2 + g.rng.Intn(16) // 2..17
	case roll < 78:
		return 18 + g.rng.Intn(48) // 18..65
	default:
		return 66 + g.rng.Intn(25) // 66..90
	}
}

func (g *Generator) drawSex() string {
	if g.rng.Intn(100) < 51 {
		return terminology.SexFemale
	}
	return terminology.SexMale
}

func (g *Generator) drawEthnicity() string {
	switch roll := g.rng.Intn(100); {
	case roll < 16:
		return terminology.EthnicHispanic
	case roll < 92:
		return terminology.EthnicNotHispanic
	case roll < 97:
		return terminology.EthnicNotReported
	default:
		return terminology.EthnicUnknown
	}
}

func (g *Generator) drawRace() string {
	total := 0
	for _, rw := range raceWeights {
		total += rw.weight
	}
	roll := g.rng.Intn(total)
	for _, rw := range raceWeights {
		if roll < rw.weight {
			return rw.code
		}
		roll -= rw.weight
	}
	return terminology.RaceUnknown
}

// birthDate derives a collected birth date consistent with age, anchored to
// mid-year of the reference year.
func (g *Generator) birthDate(age int) string {
	year := g.cfg.ReferenceYear - age - 1
	month := time.Month(1 + g.rng.Intn(12))
	day := 1 + g.rng.Intn(28)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
