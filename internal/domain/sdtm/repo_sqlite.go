package sdtm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepo creates the sdtm_dm table if needed and returns a Repository
// backed by it. Dates are stored as date text and parsed back to time.Time;
// missing values round-trip as SQL NULL.
func NewSQLiteRepo(db *sql.DB) (Repository, error) {
	const schema = `CREATE TABLE IF NOT EXISTS sdtm_dm (
		study_id     TEXT NOT NULL,
		domain       TEXT NOT NULL,
		usubjid      TEXT NOT NULL PRIMARY KEY,
		subject_id   TEXT NOT NULL,
		birth_date   TEXT,
		age          INTEGER,
		age_unit     TEXT NOT NULL,
		sex          TEXT,
		ethnicity    TEXT,
		race         TEXT,
		race_other   TEXT,
		race_recoded TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create sdtm_dm: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Save(ctx context.Context, records []*Demographic) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sdtm_dm`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sdtm_dm
		(study_id, domain, usubjid, subject_id, birth_date, age, age_unit,
		 sex, ethnicity, race, race_other, race_recoded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var birth *string
		if rec.BirthDate != nil {
			s := rec.BirthDate.Format(cdisc.BirthDateLayout)
			birth = &s
		}
		_, err := stmt.ExecContext(ctx,
			rec.StudyID, rec.Domain, rec.USubjID, rec.SubjectID, birth,
			rec.Age, rec.AgeUnit, rec.Sex, rec.Ethnicity,
			rec.Race, rec.RaceOther, rec.RaceRecoded)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rec.USubjID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepo) List(ctx context.Context) ([]*Demographic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT study_id, domain, usubjid, subject_id,
		birth_date, age, age_unit, sex, ethnicity, race, race_other, race_recoded
		FROM sdtm_dm ORDER BY usubjid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Demographic
	for rows.Next() {
		var rec Demographic
		var birth, sex, ethnic, race, raceOther, recoded sql.NullString
		var age sql.NullInt64
		err := rows.Scan(&rec.StudyID, &rec.Domain, &rec.USubjID, &rec.SubjectID,
			&birth, &age, &rec.AgeUnit, &sex, &ethnic, &race, &raceOther, &recoded)
		if err != nil {
			return nil, err
		}
		if birth.Valid {
			t, err := time.Parse(cdisc.BirthDateLayout, birth.String)
			if err != nil {
				return nil, fmt.Errorf("stored birth_date for %s: %w", rec.USubjID, err)
			}
			rec.BirthDate = &t
		}
		if age.Valid {
			a := int(age.Int64)
			rec.Age = &a
		}
		rec.Sex = strPtr(sex)
		rec.Ethnicity = strPtr(ethnic)
		rec.Race = strPtr(race)
		rec.RaceOther = strPtr(raceOther)
		rec.RaceRecoded = strPtr(recoded)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *sqliteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sdtm_dm`).Scan(&n)
	return n, err
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
