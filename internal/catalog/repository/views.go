package repository

import (
	"context"
	"database/sql"
	"math"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
)

func (r *Repo) RegionView(ctx context.Context, id int64) (domain.RegionView, error) {
	region, err := regions.get(ctx, r.q, id)
	if err != nil {
		return domain.RegionView{}, err
	}
	view := domain.RegionView{Region: region}

	if view.Departments, err = departments.listByParent(ctx, r.q, id); err != nil {
		return domain.RegionView{}, err
	}
	if view.MajorCompanies, err = companies.listByParent(ctx, r.q, id); err != nil {
		return domain.RegionView{}, err
	}
	if view.JobDemands, err = jobDemands.listByParent(ctx, r.q, id); err != nil {
		return domain.RegionView{}, err
	}
	if view.TouristSites, err = touristSites.listByParent(ctx, r.q, id); err != nil {
		return domain.RegionView{}, err
	}
	specs, err := specialties.listByParent(ctx, r.q, id)
	if err != nil {
		return domain.RegionView{}, err
	}
	if len(specs) > 0 {
		view.Specialties = &specs[0]
	}
	return view, nil
}

// RegionViews reads each child table once and stitches the views together in
// memory instead of issuing one query per region.
func (r *Repo) RegionViews(ctx context.Context) ([]domain.RegionView, error) {
	all, err := regions.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	deps, err := departments.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	comps, err := companies.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	jobs, err := jobDemands.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	sites, err := touristSites.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	specs, err := specialties.list(ctx, r.q)
	if err != nil {
		return nil, err
	}

	depsBy := groupBy(deps, departments.owner)
	compsBy := groupBy(comps, companies.owner)
	jobsBy := groupBy(jobs, jobDemands.owner)
	sitesBy := groupBy(sites, touristSites.owner)
	specBy := make(map[int64]*domain.Specialty, len(specs))
	for i := range specs {
		specBy[specs[i].RegionID] = &specs[i]
	}

	views := make([]domain.RegionView, 0, len(all))
	for _, region := range all {
		views = append(views, domain.RegionView{
			Region:         region,
			Departments:    orEmpty(depsBy[region.ID]),
			MajorCompanies: orEmpty(compsBy[region.ID]),
			JobDemands:     orEmpty(jobsBy[region.ID]),
			Specialties:    specBy[region.ID],
			TouristSites:   orEmpty(sitesBy[region.ID]),
		})
	}
	return views, nil
}

func (r *Repo) UniversityView(ctx context.Context, id int64) (domain.UniversityView, error) {
	uni, err := universities.get(ctx, r.q, id)
	if err != nil {
		return domain.UniversityView{}, err
	}
	view := domain.UniversityView{University: uni}

	if view.Faculties, err = faculties.listByParent(ctx, r.q, id); err != nil {
		return domain.UniversityView{}, err
	}
	if view.GalleryImages, err = galleries.listByParent(ctx, r.q, id); err != nil {
		return domain.UniversityView{}, err
	}
	return view, nil
}

func (r *Repo) UniversityViews(ctx context.Context) ([]domain.UniversityView, error) {
	all, err := universities.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	facs, err := faculties.list(ctx, r.q)
	if err != nil {
		return nil, err
	}
	imgs, err := galleries.list(ctx, r.q)
	if err != nil {
		return nil, err
	}

	facsBy := groupBy(facs, faculties.owner)
	imgsBy := groupBy(imgs, galleries.owner)

	views := make([]domain.UniversityView, 0, len(all))
	for _, uni := range all {
		views = append(views, domain.UniversityView{
			University:    uni,
			Faculties:     orEmpty(facsBy[uni.ID]),
			GalleryImages: orEmpty(imgsBy[uni.ID]),
		})
	}
	return views, nil
}

const overviewSQL = `SELECT
	(SELECT COUNT(*) FROM regions),
	(SELECT COUNT(*) FROM departments),
	(SELECT COUNT(*) FROM companies),
	(SELECT COUNT(*) FROM tourist_sites),
	(SELECT COUNT(*) FROM universities),
	(SELECT CAST(COALESCE(SUM(population), 0) AS BIGINT) FROM regions),
	(SELECT CAST(COALESCE(SUM(area), 0) AS BIGINT) FROM regions),
	(SELECT CAST(COALESCE(SUM(students), 0) AS BIGINT) FROM universities),
	(SELECT CAST(AVG(founded) AS DOUBLE PRECISION) FROM universities WHERE founded IS NOT NULL)`

// Overview computes catalog-wide totals. Ages are measured against year.
func (r *Repo) Overview(ctx context.Context, year int) (domain.Overview, error) {
	var (
		o           domain.Overview
		meanFounded sql.NullFloat64
	)
	err := r.q.QueryRowContext(ctx, overviewSQL).Scan(
		&o.TotalRegions, &o.TotalDepartments, &o.TotalCompanies, &o.TotalTouristSites,
		&o.TotalUniversities, &o.TotalPopulation, &o.TotalArea, &o.TotalStudents, &meanFounded,
	)
	if err != nil {
		return domain.Overview{}, translate(err)
	}

	if o.TotalArea > 0 {
		o.AverageDensity = math.Round(float64(o.TotalPopulation)/float64(o.TotalArea)*100) / 100
	}
	if meanFounded.Valid {
		o.AverageUniversityAge = int64(math.Round(float64(year) - meanFounded.Float64))
	}
	return o, nil
}

func orEmpty[M any](items []M) []M {
	if items == nil {
		return []M{}
	}
	return items
}
