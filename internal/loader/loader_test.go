package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb/sqldbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const littoralFixture = `{"regions":[{"name":"Littoral","capital":"Douala","population":100,"area":200,
"departments":["Wouri"],"majorCompanies":[{"name":"ACME","sector":"Logistics"}],"jobDemand":["Logistics"],
"touristSites":[]}],"universities":[{"name":"UD","region":"Littoral","faculties":["Science"],"galleryImages":[]}]}`

type recorder struct {
	created []string
	skipped []string
}

func (r *recorder) Wiped(int64, int64) {}
func (r *recorder) Created(kind, _, name string) {
	r.created = append(r.created, kind+":"+name)
}
func (r *recorder) Skipped(kind, name, _ string) {
	r.skipped = append(r.skipped, kind+":"+name)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func setupLoader(t *testing.T, opts ...Option) (*Loader, *repository.Store) {
	store := repository.NewStore(sqldbtest.Open(t), sqldb.SQLite)
	return New(store, opts...), store
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func count[M any](t *testing.T, c repository.Collection[M]) int64 {
	t.Helper()
	n, err := c.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestLoad_SingleRegion(t *testing.T) {
	ctx := context.Background()
	l, store := setupLoader(t)

	sum, err := l.Load(ctx, mustParse(t, littoralFixture))
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Regions: 1, Departments: 1, Companies: 1, JobDemands: 1, Universities: 1, Faculties: 1,
	}, sum)

	repo := store.Repo()
	regions, err := repo.RegionViews(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Littoral", regions[0].Name)
	assert.Len(t, regions[0].Departments, 1)
	assert.Len(t, regions[0].MajorCompanies, 1)
	assert.Len(t, regions[0].JobDemands, 1)
	assert.Empty(t, regions[0].TouristSites)
	assert.Nil(t, regions[0].Specialties)

	unis, err := repo.UniversityViews(ctx)
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "UD", unis[0].Name)
	assert.Equal(t, regions[0].ID, unis[0].RegionID)
	assert.Equal(t, domain.UniversityPublic, unis[0].Type)
	assert.Zero(t, unis[0].Students)
	assert.Len(t, unis[0].Faculties, 1)
}

func TestLoadFile_Fixture(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	inv := &countingInvalidator{}
	l, store := setupLoader(t, WithReporter(rec), WithInvalidator(inv))

	sum, err := l.LoadFile(ctx, filepath.Join("testdata", "cameroon.json"))
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Regions)
	assert.Equal(t, 5, sum.Departments)
	assert.Equal(t, 2, sum.Companies)
	assert.Equal(t, 2, sum.JobDemands)
	assert.Equal(t, 2, sum.Specialties)
	assert.Equal(t, 2, sum.TouristSites)
	assert.Equal(t, 2, sum.Universities)
	assert.Equal(t, 3, sum.Faculties)
	assert.Equal(t, 1, sum.GalleryImages)
	assert.Equal(t, 1, sum.SkippedUniversities)
	assert.Equal(t, 1, inv.calls)

	assert.Equal(t, []string{"university:Université de Bamenda"}, rec.skipped)
	assert.Contains(t, rec.created, "region:Littoral")
	assert.Contains(t, rec.created, "faculty:Théologie")

	repo := store.Repo()

	t.Run("empty images become null", func(t *testing.T) {
		regions, err := repo.RegionViews(ctx)
		require.NoError(t, err)
		require.Len(t, regions, 3)
		assert.NotNil(t, regions[0].MainImage)
		assert.Nil(t, regions[2].MainImage)
		assert.Nil(t, regions[0].TouristSites[0].Image)
		require.NotNil(t, regions[0].TouristSites[0].Location)
		assert.Equal(t, "Kribi", *regions[0].TouristSites[0].Location)
	})

	t.Run("empty specialties object still creates a record", func(t *testing.T) {
		view, err := repo.RegionViews(ctx)
		require.NoError(t, err)
		require.NotNil(t, view[1].Specialties)
		assert.Nil(t, view[1].Specialties.Gastronomy)
		assert.Nil(t, view[2].Specialties)
	})

	t.Run("university type mapping", func(t *testing.T) {
		unis, err := repo.Universities().List(ctx)
		require.NoError(t, err)
		require.Len(t, unis, 2)
		assert.Equal(t, domain.UniversityPublic, unis[0].Type)
		assert.Equal(t, domain.UniversityPrivate, unis[1].Type)
		assert.Equal(t, int64(50000), unis[0].Students)
	})

	t.Run("reloading is idempotent", func(t *testing.T) {
		again, err := l.LoadFile(ctx, filepath.Join("testdata", "cameroon.json"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), again.WipedRegions)
		assert.Equal(t, int64(2), again.WipedUniversities)

		again.WipedRegions, again.WipedUniversities = 0, 0
		assert.Equal(t, sum, again)
		assert.Equal(t, int64(3), count(t, repo.Regions()))
		assert.Equal(t, int64(5), count(t, repo.Departments()))
		assert.Equal(t, int64(2), count(t, repo.Universities()))
		assert.Equal(t, int64(1), count(t, repo.Galleries()))
		assert.Equal(t, 2, inv.calls)
	})
}

func TestLoad_FailuresLeaveStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	inv := &countingInvalidator{}
	l, store := setupLoader(t, WithInvalidator(inv))

	_, err := l.Load(ctx, mustParse(t, littoralFixture))
	require.NoError(t, err)
	repo := store.Repo()

	assertUnchanged := func(t *testing.T) {
		t.Helper()
		regions, err := repo.Regions().List(ctx)
		require.NoError(t, err)
		require.Len(t, regions, 1)
		assert.Equal(t, "Littoral", regions[0].Name)
		assert.Equal(t, int64(1), count(t, repo.Departments()))
		assert.Equal(t, int64(1), count(t, repo.Universities()))
		assert.Equal(t, int64(1), count(t, repo.Faculties()))
	}

	t.Run("absent file", func(t *testing.T) {
		_, err := l.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorIs(t, err, ErrFixtureNotFound)
		assertUnchanged(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"regions": [`), 0o644))
		_, err := l.LoadFile(ctx, path)
		assert.ErrorIs(t, err, ErrFixtureInvalid)
		assertUnchanged(t)
	})

	t.Run("duplicate region names abort", func(t *testing.T) {
		doc := mustParse(t, `{"regions":[
			{"name":"Nord","capital":"Garoua","population":1,"area":1},
			{"name":"Nord","capital":"Garoua","population":1,"area":1}]}`)
		_, err := l.Load(ctx, doc)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assertUnchanged(t)
	})

	t.Run("missing required field aborts", func(t *testing.T) {
		doc := mustParse(t, `{"regions":[
			{"name":"Sud","capital":"Ebolowa","population":1,"area":1,
			 "majorCompanies":[{"name":"Hevecam"}]}]}`)
		_, err := l.Load(ctx, doc)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), `load regions: region 0 "Sud": company "Hevecam"`)
		assertUnchanged(t)
	})

	t.Run("missing population aborts", func(t *testing.T) {
		doc := mustParse(t, `{"regions":[{"name":"Est","capital":"Bertoua","area":1}]}`)
		_, err := l.Load(ctx, doc)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assertUnchanged(t)
	})

	t.Run("unknown university type aborts", func(t *testing.T) {
		doc := mustParse(t, `{"regions":[{"name":"Ouest","capital":"Bafoussam","population":1,"area":1}],
			"universities":[{"name":"UDs","region":"Ouest","type":"Confessionnelle"}]}`)
		_, err := l.Load(ctx, doc)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assertUnchanged(t)
	})

	assert.Equal(t, 1, inv.calls)
}

func TestLoad_RegionLookupIsExact(t *testing.T) {
	l, _ := setupLoader(t)
	doc := mustParse(t, `{"regions":[{"name":"Sud-Ouest","capital":"Buea","population":1,"area":1}],
		"universities":[{"name":"UB","region":"sud-ouest"},{"name":"UB2","region":"Sud-Ouest"}]}`)

	sum, err := l.Load(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Universities)
	assert.Equal(t, 1, sum.SkippedUniversities)
}

func TestLoad_RollbackWithMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM universities`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM regions`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO regions`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	l := New(repository.NewStore(db, sqldb.Postgres))
	_, err = l.Load(context.Background(), mustParse(t, littoralFixture))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"regions":[{"name":"Nord","mainImage":"a.jpg","jobDemand":["x"]}],"universities":[]}`))
	require.NoError(t, err)
	require.Len(t, doc.Regions, 1)
	assert.Equal(t, "a.jpg", *doc.Regions[0].MainImage)
	assert.Equal(t, []string{"x"}, doc.Regions[0].JobDemand)

	_, err = Parse([]byte(`[`))
	assert.ErrorIs(t, err, ErrFixtureInvalid)
}
