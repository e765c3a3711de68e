// Package warehouse publishes the final DM and ADSL datasets to a Postgres
// database for downstream consumers. Publishing replaces the previous
// contents atomically within one transaction.
package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trialdata/cdiscpipe/internal/domain/adam"
	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
)

type Publisher struct {
	pool *pgxpool.Pool
}

func NewPublisher(pool *pgxpool.Pool) *Publisher {
	return &Publisher{pool: pool}
}

const dmSchema = `CREATE TABLE IF NOT EXISTS sdtm_dm (
	study_id     TEXT NOT NULL,
	domain       TEXT NOT NULL,
	usubjid      TEXT NOT NULL PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	birth_date   DATE,
	age          INTEGER,
	age_unit     TEXT NOT NULL,
	sex          TEXT,
	ethnicity    TEXT,
	race         TEXT,
	race_other   TEXT,
	race_recoded TEXT
)`

const adslSchema = `CREATE TABLE IF NOT EXISTS adam_adsl (
	study_id     TEXT NOT NULL,
	usubjid      TEXT NOT NULL PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	age          INTEGER,
	age_unit     TEXT NOT NULL,
	age_group    TEXT,
	sex          TEXT,
	ethnicity    TEXT,
	race         TEXT,
	race_recoded TEXT,
	safety_flag  TEXT NOT NULL
)`

// Publish loads both datasets into the warehouse in a single transaction.
func (p *Publisher) Publish(ctx context.Context, dms []*sdtm.Demographic, adsl []*adam.SubjectLevel) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{dmSchema, adslSchema, `TRUNCATE sdtm_dm`, `TRUNCATE adam_adsl`} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("prepare warehouse: %w", err)
		}
	}

	if err := publishDM(ctx, tx, dms); err != nil {
		return err
	}
	if err := publishADSL(ctx, tx, adsl); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func publishDM(ctx context.Context, tx pgx.Tx, records []*sdtm.Demographic) error {
	for _, rec := range records {
		_, err := tx.Exec(ctx, `INSERT INTO sdtm_dm
			(study_id, domain, usubjid, subject_id, birth_date, age, age_unit,
			 sex, ethnicity, race, race_other, race_recoded)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			rec.StudyID, rec.Domain, rec.USubjID, rec.SubjectID, rec.BirthDate,
			rec.Age, rec.AgeUnit, rec.Sex, rec.Ethnicity,
			rec.Race, rec.RaceOther, rec.RaceRecoded)
		if err != nil {
			return fmt.Errorf("publish dm %s: %w", rec.USubjID, err)
		}
	}
	return nil
}

func publishADSL(ctx context.Context, tx pgx.Tx, records []*adam.SubjectLevel) error {
	for _, rec := range records {
		_, err := tx.Exec(ctx, `INSERT INTO adam_adsl
			(study_id, usubjid, subject_id, age, age_unit, age_group,
			 sex, ethnicity, race, race_recoded, safety_flag)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			rec.StudyID, rec.USubjID, rec.SubjectID, rec.Age, rec.AgeUnit,
			rec.AgeGroup, rec.Sex, rec.Ethnicity, rec.Race, rec.RaceRecoded,
			rec.SafetyFlag)
		if err != nil {
			return fmt.Errorf("publish adsl %s: %w", rec.USubjID, err)
		}
	}
	return nil
}
