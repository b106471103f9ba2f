package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb"
)

// Collection is the CRUD surface of one entity table.
type Collection[M any] struct {
	t table[M]
	q querier
}

func (c Collection[M]) List(ctx context.Context) ([]M, error) {
	return c.t.list(ctx, c.q)
}

func (c Collection[M]) Get(ctx context.Context, id int64) (M, error) {
	return c.t.get(ctx, c.q, id)
}

// Create inserts m and sets its ID.
func (c Collection[M]) Create(ctx context.Context, m *M) error {
	return c.t.insert(ctx, c.q, m)
}

// Update overwrites every column of the row with m's ID.
func (c Collection[M]) Update(ctx context.Context, m *M) error {
	return c.t.update(ctx, c.q, m)
}

func (c Collection[M]) Delete(ctx context.Context, id int64) error {
	return c.t.delete(ctx, c.q, id)
}

func (c Collection[M]) Count(ctx context.Context) (int64, error) {
	return c.t.count(ctx, c.q)
}

// Repo gives access to every catalog table through a single querier, either
// the pool or an open transaction.
type Repo struct {
	q querier
}

func (r *Repo) Regions() Collection[domain.Region] {
	return Collection[domain.Region]{t: regions, q: r.q}
}

func (r *Repo) Departments() Collection[domain.Department] {
	return Collection[domain.Department]{t: departments, q: r.q}
}

func (r *Repo) Companies() Collection[domain.Company] {
	return Collection[domain.Company]{t: companies, q: r.q}
}

func (r *Repo) JobDemands() Collection[domain.JobDemand] {
	return Collection[domain.JobDemand]{t: jobDemands, q: r.q}
}

func (r *Repo) Specialties() Collection[domain.Specialty] {
	return Collection[domain.Specialty]{t: specialties, q: r.q}
}

func (r *Repo) TouristSites() Collection[domain.TouristSite] {
	return Collection[domain.TouristSite]{t: touristSites, q: r.q}
}

func (r *Repo) Universities() Collection[domain.University] {
	return Collection[domain.University]{t: universities, q: r.q}
}

func (r *Repo) Faculties() Collection[domain.Faculty] {
	return Collection[domain.Faculty]{t: faculties, q: r.q}
}

func (r *Repo) Galleries() Collection[domain.UniversityGallery] {
	return Collection[domain.UniversityGallery]{t: galleries, q: r.q}
}

// DeleteAllRegions removes every region; the schema cascades to their
// dependents, universities included.
func (r *Repo) DeleteAllRegions(ctx context.Context) (int64, error) {
	return regions.deleteAll(ctx, r.q)
}

// DeleteAllUniversities removes every university along with faculties and
// gallery images.
func (r *Repo) DeleteAllUniversities(ctx context.Context) (int64, error) {
	return universities.deleteAll(ctx, r.q)
}

// Store owns the connection pool.
type Store struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewStore(db *sql.DB, dialect sqldb.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) DB() *sql.DB { return s.db }

// Repo returns a repository running each statement on its own pooled connection.
func (s *Store) Repo() *Repo {
	return &Repo{q: s.db}
}

// InTx runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(*Repo) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[warn] rollback failed err=%v", rbErr)
			}
		}
	}()

	if err = fn(&Repo{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Migrate creates the catalog schema for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	return sqldb.Migrate(ctx, s.db, s.dialect)
}
