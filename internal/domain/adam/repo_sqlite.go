package adam

import (
	"context"
	"database/sql"
	"fmt"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepo creates the adam_adsl table if needed and returns a
// Repository backed by it.
func NewSQLiteRepo(db *sql.DB) (Repository, error) {
	const schema = `CREATE TABLE IF NOT EXISTS adam_adsl (
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
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create adam_adsl: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Save(ctx context.Context, records []*SubjectLevel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM adam_adsl`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO adam_adsl
		(study_id, usubjid, subject_id, age, age_unit, age_group,
		 sex, ethnicity, race, race_recoded, safety_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.StudyID, rec.USubjID, rec.SubjectID, rec.Age, rec.AgeUnit,
			rec.AgeGroup, rec.Sex, rec.Ethnicity, rec.Race, rec.RaceRecoded,
			rec.SafetyFlag)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rec.USubjID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepo) List(ctx context.Context) ([]*SubjectLevel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT study_id, usubjid, subject_id, age,
		age_unit, age_group, sex, ethnicity, race, race_recoded, safety_flag
		FROM adam_adsl ORDER BY usubjid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SubjectLevel
	for rows.Next() {
		var rec SubjectLevel
		var group, sex, ethnic, race, recoded sql.NullString
		var age sql.NullInt64
		err := rows.Scan(&rec.StudyID, &rec.USubjID, &rec.SubjectID, &age,
			&rec.AgeUnit, &group, &sex, &ethnic, &race, &recoded, &rec.SafetyFlag)
		if err != nil {
			return nil, err
		}
		if age.Valid {
			a := int(age.Int64)
			rec.Age = &a
		}
		rec.AgeGroup = strPtr(group)
		rec.Sex = strPtr(sex)
		rec.Ethnicity = strPtr(ethnic)
		rec.Race = strPtr(race)
		rec.RaceRecoded = strPtr(recoded)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *sqliteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM adam_adsl`).Scan(&n)
	return n, err
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
