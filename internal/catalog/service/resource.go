package service

import (
	"context"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
)

// Resource is the write path for one entity: normalize, validate, persist,
// then drop cached views.
type Resource[M any] struct {
	c       *Catalog
	coll    func(*repository.Repo) repository.Collection[M]
	prepare func(*M) error
	// deleted runs after a committed delete with the removed record
	deleted func(context.Context, M)
}

func (r Resource[M]) repo() repository.Collection[M] {
	return r.coll(r.c.store.Repo())
}

func (r Resource[M]) List(ctx context.Context) ([]M, error) {
	return r.repo().List(ctx)
}

func (r Resource[M]) Get(ctx context.Context, id int64) (M, error) {
	return r.repo().Get(ctx, id)
}

func (r Resource[M]) Create(ctx context.Context, m *M) error {
	if err := r.check(m); err != nil {
		return err
	}
	if err := r.repo().Create(ctx, m); err != nil {
		return err
	}
	r.c.invalidate(ctx)
	return nil
}

// Update replaces every field of the stored record; m must carry its ID.
func (r Resource[M]) Update(ctx context.Context, m *M) error {
	if err := r.check(m); err != nil {
		return err
	}
	if err := r.repo().Update(ctx, m); err != nil {
		return err
	}
	r.c.invalidate(ctx)
	return nil
}

func (r Resource[M]) Delete(ctx context.Context, id int64) error {
	var old M
	if r.deleted != nil {
		var err error
		if old, err = r.repo().Get(ctx, id); err != nil {
			return err
		}
	}
	if err := r.repo().Delete(ctx, id); err != nil {
		return err
	}
	r.c.invalidate(ctx)
	if r.deleted != nil {
		r.deleted(ctx, old)
	}
	return nil
}

func (r Resource[M]) check(m *M) error {
	if r.prepare != nil {
		if err := r.prepare(m); err != nil {
			return err
		}
	}
	return domain.Validate(m)
}
