package sdtm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
	"github.com/trialdata/cdiscpipe/internal/platform/db"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	sdb, err := db.OpenStudyFile(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sdb.Close() })
	repo, err := NewSQLiteRepo(sdb)
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestSQLiteRepo_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	birth := time.Date(1984, 3, 12, 0, 0, 0, 0, time.UTC)
	records := []*Demographic{
		{
			StudyID:     "S1",
			Domain:      cdisc.DomainDM,
			USubjID:     "S1-001",
			SubjectID:   "001",
			BirthDate:   &birth,
			Age:         cdisc.Int(40),
			AgeUnit:     terminology.AgeUnitYears,
			Sex:         cdisc.Str("F"),
			Ethnicity:   cdisc.Str(terminology.EthnicNotHispanic),
			Race:        cdisc.Str(terminology.RaceOther),
			RaceOther:   cdisc.Str("Caucasian"),
			RaceRecoded: cdisc.Str(terminology.RaceWhite),
		},
		{
			StudyID:   "S1",
			Domain:    cdisc.DomainDM,
			USubjID:   "S1-002",
			SubjectID: "002",
			AgeUnit:   terminology.AgeUnitYears,
		},
	}
	if err := repo.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}

	full := got[0]
	if full.USubjID != "S1-001" {
		t.Fatalf("order: first row %s", full.USubjID)
	}
	if full.BirthDate == nil || !full.BirthDate.Equal(birth) {
		t.Errorf("birth date = %v, want %v", full.BirthDate, birth)
	}
	if full.Age == nil || *full.Age != 40 {
		t.Errorf("age = %v", full.Age)
	}
	if full.RaceRecoded == nil || *full.RaceRecoded != terminology.RaceWhite {
		t.Errorf("race recoded = %v", full.RaceRecoded)
	}

	sparse := got[1]
	if sparse.BirthDate != nil || sparse.Age != nil || sparse.Sex != nil ||
		sparse.Ethnicity != nil || sparse.Race != nil ||
		sparse.RaceOther != nil || sparse.RaceRecoded != nil {
		t.Errorf("NULL columns did not round-trip as nil: %+v", sparse)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("count = %d, %v", n, err)
	}
}

func TestSQLiteRepo_SaveReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []*Demographic{
		{StudyID: "S1", Domain: cdisc.DomainDM, USubjID: "S1-001", SubjectID: "001", AgeUnit: terminology.AgeUnitYears},
		{StudyID: "S1", Domain: cdisc.DomainDM, USubjID: "S1-002", SubjectID: "002", AgeUnit: terminology.AgeUnitYears},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := []*Demographic{
		{StudyID: "S1", Domain: cdisc.DomainDM, USubjID: "S1-003", SubjectID: "003", AgeUnit: terminology.AgeUnitYears},
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].USubjID != "S1-003" {
		t.Errorf("expected single replaced row, got %+v", got)
	}
}
