package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS courses (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	units         INTEGER NOT NULL CHECK (units > 0),
	difficulty    TEXT NOT NULL DEFAULT 'medium',
	type          TEXT NOT NULL DEFAULT 'elective',
	prerequisites TEXT[] NOT NULL DEFAULT '{}',
	offered_terms TEXT[] NOT NULL DEFAULT '{}',
	majors        TEXT[] NOT NULL DEFAULT '{}',
	default_time  TEXT NOT NULL DEFAULT '',
	instructor    TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_courses_majors ON courses USING GIN (majors);

CREATE TABLE IF NOT EXISTS students (
	id             TEXT PRIMARY KEY,
	major          TEXT NOT NULL,
	gpa            NUMERIC(3,2) NOT NULL DEFAULT 0,
	current_season TEXT NOT NULL,
	current_year   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS student_completed_courses (
	student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	course_id  TEXT NOT NULL,
	PRIMARY KEY (student_id, course_id)
);

CREATE TABLE IF NOT EXISTS degree_requirements (
	major              TEXT PRIMARY KEY,
	core_courses       TEXT[] NOT NULL DEFAULT '{}',
	elective_courses   TEXT[] NOT NULL DEFAULT '{}',
	electives_required INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS saved_plans (
	id               TEXT PRIMARY KEY,
	student_id       TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	version          INTEGER NOT NULL,
	status           TEXT NOT NULL,
	total_units      INTEGER NOT NULL DEFAULT 0,
	overall_gpa      NUMERIC(4,2) NOT NULL DEFAULT 0,
	graduation_label TEXT NOT NULL DEFAULT '',
	payload          JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (student_id, version)
);
CREATE INDEX IF NOT EXISTS idx_saved_plans_student ON saved_plans(student_id, status);
`

// Migrate creates the planner tables when they are missing.
func Migrate(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
