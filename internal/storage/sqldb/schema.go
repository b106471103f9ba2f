package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Tables in dependency order. Dropping or truncating walks it backwards.
var Tables = []string{
	"regions",
	"departments",
	"companies",
	"job_demands",
	"specialties",
	"tourist_sites",
	"universities",
	"faculties",
	"university_galleries",
}

// %ID% is replaced with the dialect's auto-increment primary key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS regions (
	id %ID%,
	name VARCHAR(100) NOT NULL UNIQUE,
	capital VARCHAR(100) NOT NULL,
	population BIGINT NOT NULL CHECK (population >= 0),
	area BIGINT NOT NULL CHECK (area >= 0),
	main_image TEXT
)`,
	`CREATE TABLE IF NOT EXISTS departments (
	id %ID%,
	name VARCHAR(100) NOT NULL,
	region_id BIGINT NOT NULL REFERENCES regions(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS companies (
	id %ID%,
	name VARCHAR(150) NOT NULL,
	sector VARCHAR(100) NOT NULL,
	region_id BIGINT NOT NULL REFERENCES regions(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS job_demands (
	id %ID%,
	name VARCHAR(100) NOT NULL,
	region_id BIGINT NOT NULL REFERENCES regions(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS specialties (
	id %ID%,
	region_id BIGINT NOT NULL UNIQUE REFERENCES regions(id) ON DELETE CASCADE,
	gastronomy TEXT,
	professions TEXT,
	entertainment TEXT
)`,
	`CREATE TABLE IF NOT EXISTS tourist_sites (
	id %ID%,
	name VARCHAR(150) NOT NULL,
	description TEXT NOT NULL,
	location VARCHAR(200),
	image TEXT,
	region_id BIGINT NOT NULL REFERENCES regions(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS universities (
	id %ID%,
	name VARCHAR(200) NOT NULL,
	region_id BIGINT NOT NULL REFERENCES regions(id) ON DELETE CASCADE,
	founded BIGINT CHECK (founded IS NULL OR founded >= 0),
	type VARCHAR(20) NOT NULL DEFAULT 'public' CHECK (type IN ('public', 'private')),
	students BIGINT NOT NULL DEFAULT 0 CHECK (students >= 0),
	website VARCHAR(200),
	description TEXT,
	main_image TEXT
)`,
	`CREATE TABLE IF NOT EXISTS faculties (
	id %ID%,
	name VARCHAR(150) NOT NULL,
	university_id BIGINT NOT NULL REFERENCES universities(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS university_galleries (
	id %ID%,
	image TEXT NOT NULL,
	university_id BIGINT NOT NULL REFERENCES universities(id) ON DELETE CASCADE
)`,
	`CREATE INDEX IF NOT EXISTS idx_departments_region ON departments(region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_region ON companies(region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_demands_region ON job_demands(region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tourist_sites_region ON tourist_sites(region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_universities_region ON universities(region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_faculties_university ON faculties(university_id)`,
	`CREATE INDEX IF NOT EXISTS idx_university_galleries_university ON university_galleries(university_id)`,
}

// Migrate creates any missing catalog tables. It never alters existing ones.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	pk := "BIGSERIAL PRIMARY KEY"
	if dialect == SQLite {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, strings.ReplaceAll(stmt, "%ID%", pk)); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
