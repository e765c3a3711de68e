package cdash

import (
	"context"
	"database/sql"
	"fmt"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepo creates the cdash_demographics table if needed and returns a
// Repository backed by it. Optional fields round-trip as SQL NULL.
func NewSQLiteRepo(db *sql.DB) (Repository, error) {
	const schema = `CREATE TABLE IF NOT EXISTS cdash_demographics (
		study_id   TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		birth_date TEXT,
		age        INTEGER,
		age_unit   TEXT NOT NULL,
		sex        TEXT,
		ethnicity  TEXT,
		race       TEXT,
		race_other TEXT,
		PRIMARY KEY (study_id, subject_id)
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create cdash_demographics: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Save(ctx context.Context, records []*DemographicRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cdash_demographics`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cdash_demographics
		(study_id, subject_id, birth_date, age, age_unit, sex, ethnicity, race, race_other)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.StudyID, rec.SubjectID, rec.BirthDate, rec.Age, rec.AgeUnit,
			rec.Sex, rec.Ethnicity, rec.Race, rec.RaceOther)
		if err != nil {
			return fmt.Errorf("insert subject %s: %w", rec.SubjectID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepo) List(ctx context.Context) ([]*DemographicRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT study_id, subject_id, birth_date, age,
		age_unit, sex, ethnicity, race, race_other
		FROM cdash_demographics ORDER BY study_id, subject_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*DemographicRecord
	for rows.Next() {
		var rec DemographicRecord
		var birth, sex, ethnic, race, raceOther sql.NullString
		var age sql.NullInt64
		err := rows.Scan(&rec.StudyID, &rec.SubjectID, &birth, &age, &rec.AgeUnit,
			&sex, &ethnic, &race, &raceOther)
		if err != nil {
			return nil, err
		}
		rec.BirthDate = nullStr(birth)
		rec.Age = nullInt(age)
		rec.Sex = nullStr(sex)
		rec.Ethnicity = nullStr(ethnic)
		rec.Race = nullStr(race)
		rec.RaceOther = nullStr(raceOther)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *sqliteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cdash_demographics`).Scan(&n)
	return n, err
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
