// Package loader replaces the catalog with the contents of a fixture document.
//
// A load wipes both aggregate roots and rebuilds them inside one transaction,
// so readers see either the previous catalog or the new one.
package loader

import (
	"context"
	"fmt"
	"log"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
)

// Store runs fn in a transaction that commits only when fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(*repository.Repo) error) error
}

// Invalidator drops cached catalog views after a committed load.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Summary counts what one load did.
type Summary struct {
	WipedRegions        int64 `json:"wiped_regions"`
	WipedUniversities   int64 `json:"wiped_universities"`
	Regions             int   `json:"regions"`
	Departments         int   `json:"departments"`
	Companies           int   `json:"companies"`
	JobDemands          int   `json:"job_demands"`
	Specialties         int   `json:"specialties"`
	TouristSites        int   `json:"tourist_sites"`
	Universities        int   `json:"universities"`
	Faculties           int   `json:"faculties"`
	GalleryImages       int   `json:"gallery_images"`
	SkippedUniversities int   `json:"skipped_universities"`
}

type Loader struct {
	store    Store
	reporter Reporter
	cache    Invalidator
}

type Option func(*Loader)

func WithReporter(r Reporter) Option {
	return func(l *Loader) { l.reporter = r }
}

func WithInvalidator(i Invalidator) Option {
	return func(l *Loader) { l.cache = i }
}

func New(store Store, opts ...Option) *Loader {
	l := &Loader{store: store, reporter: nopReporter{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads the fixture at path and loads it. File errors are returned
// before any transaction is opened.
func (l *Loader) LoadFile(ctx context.Context, path string) (Summary, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	return l.Load(ctx, doc)
}

// Load wipes every region and university and recreates the catalog from doc.
// Any error rolls the whole run back, wipe included.
func (l *Loader) Load(ctx context.Context, doc *Document) (Summary, error) {
	var sum Summary
	err := l.store.InTx(ctx, func(repo *repository.Repo) error {
		sum = Summary{}
		run := &run{repo: repo, reporter: l.reporter, sum: &sum, regions: map[string]int64{}}

		if err := run.wipe(ctx); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
		if err := run.loadRegions(ctx, doc.Regions); err != nil {
			return fmt.Errorf("load regions: %w", err)
		}
		if err := run.loadUniversities(ctx, doc.Universities); err != nil {
			return fmt.Errorf("load universities: %w", err)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			log.Printf("[warn] cache invalidation after load failed err=%v", err)
		}
	}
	return sum, nil
}

// run holds the state of one load inside its transaction.
type run struct {
	repo     *repository.Repo
	reporter Reporter
	sum      *Summary
	// regions created in this run, by exact name
	regions map[string]int64
}

// wipe clears universities first so the summary counts them; removing the
// regions afterwards cascades to everything else.
func (r *run) wipe(ctx context.Context) error {
	universities, err := r.repo.DeleteAllUniversities(ctx)
	if err != nil {
		return err
	}
	regions, err := r.repo.DeleteAllRegions(ctx)
	if err != nil {
		return err
	}
	r.sum.WipedRegions, r.sum.WipedUniversities = regions, universities
	r.reporter.Wiped(regions, universities)
	return nil
}

func (r *run) loadRegions(ctx context.Context, entries []RegionEntry) error {
	for i, e := range entries {
		if err := r.loadRegion(ctx, e); err != nil {
			return fmt.Errorf("region %d %q: %w", i, e.Name, err)
		}
	}
	return nil
}

func (r *run) loadRegion(ctx context.Context, e RegionEntry) error {
	if e.Population == nil || e.Area == nil {
		return fmt.Errorf("%w: population and area are required", domain.ErrValidation)
	}
	region := domain.Region{
		Name:       e.Name,
		Capital:    e.Capital,
		Population: *e.Population,
		Area:       *e.Area,
		MainImage:  nonEmpty(e.MainImage),
	}
	if err := create(ctx, r.repo.Regions(), &region); err != nil {
		return err
	}
	r.regions[region.Name] = region.ID
	r.sum.Regions++
	r.reporter.Created("region", "", region.Name)

	for _, name := range e.Departments {
		d := domain.Department{Name: name, RegionID: region.ID}
		if err := create(ctx, r.repo.Departments(), &d); err != nil {
			return fmt.Errorf("department %q: %w", name, err)
		}
		r.sum.Departments++
		r.reporter.Created("department", region.Name, name)
	}

	for _, c := range e.MajorCompanies {
		company := domain.Company{Name: c.Name, Sector: c.Sector, RegionID: region.ID}
		if err := create(ctx, r.repo.Companies(), &company); err != nil {
			return fmt.Errorf("company %q: %w", c.Name, err)
		}
		r.sum.Companies++
		r.reporter.Created("company", region.Name, c.Name)
	}

	for _, name := range e.JobDemand {
		j := domain.JobDemand{Name: name, RegionID: region.ID}
		if err := create(ctx, r.repo.JobDemands(), &j); err != nil {
			return fmt.Errorf("job demand %q: %w", name, err)
		}
		r.sum.JobDemands++
		r.reporter.Created("job demand", region.Name, name)
	}

	// the object's presence decides, even when every field is missing
	if s := e.Specialties; s != nil {
		spec := domain.Specialty{
			RegionID:      region.ID,
			Gastronomy:    s.Gastronomy,
			Professions:   s.Professions,
			Entertainment: s.Entertainment,
		}
		if err := create(ctx, r.repo.Specialties(), &spec); err != nil {
			return fmt.Errorf("specialty: %w", err)
		}
		r.sum.Specialties++
		r.reporter.Created("specialty", region.Name, region.Name)
	}

	for _, t := range e.TouristSites {
		site := domain.TouristSite{
			Name:        t.Name,
			Description: t.Description,
			Location:    t.Location,
			Image:       nonEmpty(t.Image),
			RegionID:    region.ID,
		}
		if err := create(ctx, r.repo.TouristSites(), &site); err != nil {
			return fmt.Errorf("tourist site %q: %w", t.Name, err)
		}
		r.sum.TouristSites++
		r.reporter.Created("tourist site", region.Name, t.Name)
	}
	return nil
}

func (r *run) loadUniversities(ctx context.Context, entries []UniversityEntry) error {
	for i, e := range entries {
		regionID, ok := r.regions[e.Region]
		if !ok {
			r.sum.SkippedUniversities++
			r.reporter.Skipped("university", e.Name, fmt.Sprintf("region %q not found", e.Region))
			continue
		}
		if err := r.loadUniversity(ctx, e, regionID); err != nil {
			return fmt.Errorf("university %d %q: %w", i, e.Name, err)
		}
	}
	return nil
}

func (r *run) loadUniversity(ctx context.Context, e UniversityEntry, regionID int64) error {
	typ, err := domain.ParseUniversityType(e.Type)
	if err != nil {
		return err
	}
	uni := domain.University{
		Name:        e.Name,
		RegionID:    regionID,
		Founded:     e.Founded,
		Type:        typ,
		Website:     e.Website,
		Description: e.Description,
		MainImage:   nonEmpty(e.MainImage),
	}
	if e.Students != nil {
		uni.Students = *e.Students
	}
	if err := create(ctx, r.repo.Universities(), &uni); err != nil {
		return err
	}
	r.sum.Universities++
	r.reporter.Created("university", "", uni.Name)

	for _, name := range e.Faculties {
		f := domain.Faculty{Name: name, UniversityID: uni.ID}
		if err := create(ctx, r.repo.Faculties(), &f); err != nil {
			return fmt.Errorf("faculty %q: %w", name, err)
		}
		r.sum.Faculties++
		r.reporter.Created("faculty", uni.Name, name)
	}

	for _, image := range e.GalleryImages {
		g := domain.UniversityGallery{Image: image, UniversityID: uni.ID}
		if err := create(ctx, r.repo.Galleries(), &g); err != nil {
			return fmt.Errorf("gallery image %q: %w", image, err)
		}
		r.sum.GalleryImages++
		r.reporter.Created("gallery image", uni.Name, image)
	}
	return nil
}

func create[M any](ctx context.Context, c repository.Collection[M], m *M) error {
	if err := domain.Validate(m); err != nil {
		return err
	}
	return c.Create(ctx, m)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
