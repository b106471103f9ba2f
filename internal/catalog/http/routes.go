// Package http exposes the catalog over gin under /api/v1.
package http

import (
	"fmt"
	"net/http"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var urls = validator.New()

// Register mounts every catalog resource plus the overview on rg.
func Register(rg *gin.RouterGroup, svc *service.Catalog) {
	regions := &resource[domain.Region]{
		svc:   svc.Regions(),
		setID: func(m *domain.Region, id int64) { m.ID = id },
		list: func(c *gin.Context) (any, error) {
			return svc.RegionViews(c.Request.Context())
		},
		retrieve: func(c *gin.Context, id int64) (any, error) {
			return svc.RegionView(c.Request.Context(), id)
		},
		mandatory: []string{"population", "area"},
	}
	regions.register(rg.Group("/regions"))

	(&resource[domain.Department]{
		svc:   svc.Departments(),
		setID: func(m *domain.Department, id int64) { m.ID = id },
	}).register(rg.Group("/departments"))

	(&resource[domain.Company]{
		svc:   svc.Companies(),
		setID: func(m *domain.Company, id int64) { m.ID = id },
	}).register(rg.Group("/companies"))

	(&resource[domain.JobDemand]{
		svc:   svc.JobDemands(),
		setID: func(m *domain.JobDemand, id int64) { m.ID = id },
	}).register(rg.Group("/job-demands"))

	(&resource[domain.Specialty]{
		svc:   svc.Specialties(),
		setID: func(m *domain.Specialty, id int64) { m.ID = id },
	}).register(rg.Group("/specialties"))

	(&resource[domain.TouristSite]{
		svc:   svc.TouristSites(),
		setID: func(m *domain.TouristSite, id int64) { m.ID = id },
	}).register(rg.Group("/tourist-sites"))

	universities := &resource[domain.University]{
		svc:   svc.Universities(),
		setID: func(m *domain.University, id int64) { m.ID = id },
		defaults: func(m *domain.University) {
			m.Type = domain.UniversityPublic
		},
		check: checkWebsite,
		list: func(c *gin.Context) (any, error) {
			return svc.UniversityViews(c.Request.Context())
		},
		retrieve: func(c *gin.Context, id int64) (any, error) {
			return svc.UniversityView(c.Request.Context(), id)
		},
	}
	universities.register(rg.Group("/universities"))

	(&resource[domain.Faculty]{
		svc:   svc.Faculties(),
		setID: func(m *domain.Faculty, id int64) { m.ID = id },
	}).register(rg.Group("/faculties"))

	(&resource[domain.UniversityGallery]{
		svc:   svc.Galleries(),
		setID: func(m *domain.UniversityGallery, id int64) { m.ID = id },
	}).register(rg.Group("/university-galleries"))

	rg.GET("/overview", func(c *gin.Context) {
		o, err := svc.Overview(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	})
}

// checkWebsite applies to API writes only; fixture data keeps whatever the
// document carries.
func checkWebsite(u *domain.University) error {
	if u.Website == nil || *u.Website == "" {
		return nil
	}
	if err := urls.Var(*u.Website, "url"); err != nil {
		return fmt.Errorf("%w: website must be a URL", domain.ErrValidation)
	}
	return nil
}
