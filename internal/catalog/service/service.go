package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
	"github.com/datakamer/datakamer-backend/internal/media"
)

// ViewCache stores serialized read views. Implementations must treat their own
// failures as misses.
type ViewCache interface {
	Lookup(ctx context.Context, kind string, id int64, dst any) (key string, hit bool)
	Store(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context) error
}

const (
	kindRegions      = "regions"
	kindRegion       = "region"
	kindUniversities = "universities"
	kindUniversity   = "university"
	kindOverview     = "overview"
)

// MediaRemover deletes stored image objects; media.Store satisfies it.
type MediaRemover interface {
	Delete(ctx context.Context, key string) error
}

type Catalog struct {
	store *repository.Store
	cache ViewCache
	media MediaRemover
	now   func() time.Time
}

type Option func(*Catalog)

func WithCache(cache ViewCache) Option {
	return func(c *Catalog) { c.cache = cache }
}

// WithMedia makes gallery deletes remove their image object once no other
// gallery row references it.
func WithMedia(m MediaRemover) Option {
	return func(c *Catalog) { c.media = m }
}

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func New(store *repository.Store, opts ...Option) *Catalog {
	c := &Catalog{store: store, cache: noCache{}, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) Regions() Resource[domain.Region] {
	return Resource[domain.Region]{c: c, coll: (*repository.Repo).Regions}
}

func (c *Catalog) Departments() Resource[domain.Department] {
	return Resource[domain.Department]{c: c, coll: (*repository.Repo).Departments}
}

func (c *Catalog) Companies() Resource[domain.Company] {
	return Resource[domain.Company]{c: c, coll: (*repository.Repo).Companies}
}

func (c *Catalog) JobDemands() Resource[domain.JobDemand] {
	return Resource[domain.JobDemand]{c: c, coll: (*repository.Repo).JobDemands}
}

func (c *Catalog) Specialties() Resource[domain.Specialty] {
	return Resource[domain.Specialty]{c: c, coll: (*repository.Repo).Specialties}
}

func (c *Catalog) TouristSites() Resource[domain.TouristSite] {
	return Resource[domain.TouristSite]{c: c, coll: (*repository.Repo).TouristSites}
}

func (c *Catalog) Universities() Resource[domain.University] {
	return Resource[domain.University]{c: c, coll: (*repository.Repo).Universities, prepare: normalizeUniversity}
}

func (c *Catalog) Faculties() Resource[domain.Faculty] {
	return Resource[domain.Faculty]{c: c, coll: (*repository.Repo).Faculties}
}

func (c *Catalog) Galleries() Resource[domain.UniversityGallery] {
	return Resource[domain.UniversityGallery]{c: c, coll: (*repository.Repo).Galleries, deleted: c.galleryDeleted}
}

func (c *Catalog) RegionViews(ctx context.Context) ([]domain.RegionView, error) {
	return cached(ctx, c, kindRegions, 0, c.store.Repo().RegionViews)
}

func (c *Catalog) RegionView(ctx context.Context, id int64) (domain.RegionView, error) {
	return cached(ctx, c, kindRegion, id, func(ctx context.Context) (domain.RegionView, error) {
		return c.store.Repo().RegionView(ctx, id)
	})
}

func (c *Catalog) UniversityViews(ctx context.Context) ([]domain.UniversityView, error) {
	return cached(ctx, c, kindUniversities, 0, c.store.Repo().UniversityViews)
}

func (c *Catalog) UniversityView(ctx context.Context, id int64) (domain.UniversityView, error) {
	return cached(ctx, c, kindUniversity, id, func(ctx context.Context) (domain.UniversityView, error) {
		return c.store.Repo().UniversityView(ctx, id)
	})
}

func (c *Catalog) Overview(ctx context.Context) (domain.Overview, error) {
	return cached(ctx, c, kindOverview, 0, func(ctx context.Context) (domain.Overview, error) {
		return c.store.Repo().Overview(ctx, c.now().Year())
	})
}

// invalidate runs after a committed write. The write already succeeded, so a
// cache failure is only logged.
func (c *Catalog) invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		log.Printf("[warn] cache invalidation failed err=%v", err)
	}
}

func cached[V any](ctx context.Context, c *Catalog, kind string, id int64, load func(context.Context) (V, error)) (V, error) {
	var v V
	key, hit := c.cache.Lookup(ctx, kind, id, &v)
	if hit {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	// a write that committed during load has already moved readers past key
	c.cache.Store(ctx, key, v)
	return v, nil
}

// galleryDeleted removes the image behind a deleted gallery row. The row is
// already gone, so failures are only logged.
func (c *Catalog) galleryDeleted(ctx context.Context, g domain.UniversityGallery) {
	if c.media == nil {
		return
	}
	key, ok := mediaKey(g.Image)
	if !ok {
		return
	}

	rest, err := c.store.Repo().Galleries().List(ctx)
	if err != nil {
		log.Printf("[warn] media cleanup skipped key=%s err=%v", key, err)
		return
	}
	for _, other := range rest {
		if k, _ := mediaKey(other.Image); k == key {
			return
		}
	}

	if err := c.media.Delete(ctx, key); err != nil && !errors.Is(err, media.ErrNotFound) {
		log.Printf("[warn] media cleanup failed key=%s err=%v", key, err)
	}
}

// mediaKey turns a stored image reference into a media store key. External
// URLs are not ours to delete.
func mediaKey(ref string) (string, bool) {
	key := strings.TrimPrefix(strings.TrimSpace(ref), "/media/")
	if key == "" || strings.Contains(key, "://") {
		return "", false
	}
	return key, true
}

func normalizeUniversity(u *domain.University) error {
	t, err := domain.ParseUniversityType(string(u.Type))
	if err != nil {
		return err
	}
	u.Type = t
	return nil
}

type noCache struct{}

func (noCache) Lookup(context.Context, string, int64, any) (string, bool) { return "", false }
func (noCache) Store(context.Context, string, any)                        {}
func (noCache) Invalidate(context.Context) error                          { return nil }
