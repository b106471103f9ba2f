package http

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/datakamer/datakamer-backend/internal/api/http/middleware"
	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
	"github.com/datakamer/datakamer-backend/internal/catalog/service"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb/sqldbtest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := repository.NewStore(sqldbtest.Open(t), sqldb.SQLite)

	r := gin.New()
	Register(r.Group("/api/v1"), service.New(store))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func createRegion(t *testing.T, r *gin.Engine, name string) domain.Region {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/regions", gin.H{
		"name": name, "capital": name + " Ville", "population": 100, "area": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Region](t, w)
}

func TestRegions(t *testing.T) {
	r := setupRouter(t)
	region := createRegion(t, r, "Littoral")
	assert.NotZero(t, region.ID)
	assert.Nil(t, region.MainImage)

	t.Run("population and area are mandatory", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/regions", gin.H{"name": "Est", "capital": "Bertoua"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "population is required")
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/regions", gin.H{
			"name": "Littoral", "capital": "Douala", "population": 1, "area": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("retrieve returns the nested view", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/departments", gin.H{"name": "Wouri", "region": region.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = do(t, r, http.MethodGet, "/api/v1/regions/"+itoa(region.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var view map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, "Littoral", view["name"])
		assert.Len(t, view["departments"], 1)
		assert.Equal(t, []any{}, view["major_companies"])
		assert.Nil(t, view["specialties"])
		assert.Contains(t, view, "main_image")

		list := decode[[]domain.RegionView](t, do(t, r, http.MethodGet, "/api/v1/regions", nil))
		require.Len(t, list, 1)
		assert.Len(t, list[0].Departments, 1)
	})

	t.Run("patch overlays given fields", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/api/v1/regions/"+itoa(region.ID), gin.H{"main_image": "regions/littoral.jpg"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := decode[domain.Region](t, w)
		assert.Equal(t, "Littoral", got.Name)
		assert.Equal(t, int64(100), got.Population)
		require.NotNil(t, got.MainImage)
		assert.Equal(t, "regions/littoral.jpg", *got.MainImage)
	})

	t.Run("patch result is validated", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/api/v1/regions/"+itoa(region.ID), gin.H{"population": -5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("put replaces the record", func(t *testing.T) {
		w := do(t, r, http.MethodPut, "/api/v1/regions/"+itoa(region.ID), gin.H{
			"name": "Littoral", "capital": "Douala", "population": 3000000, "area": 20248,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[domain.Region](t, w)
		assert.Equal(t, region.ID, got.ID)
		assert.Nil(t, got.MainImage)
	})

	t.Run("bad ids", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/regions/abc", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/regions/999", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPatch, "/api/v1/regions/999", gin.H{}).Code)
		assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/v1/regions/999", nil).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/departments", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("binding reports failed constraints", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/departments", gin.H{"region": region.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Name failed required")
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, "/api/v1/regions/"+itoa(region.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		deps := decode[[]domain.Department](t, do(t, r, http.MethodGet, "/api/v1/departments", nil))
		assert.Empty(t, deps)
	})
}

func TestChildResources(t *testing.T) {
	r := setupRouter(t)
	region := createRegion(t, r, "Sud")

	cases := []struct {
		path string
		body gin.H
	}{
		{"/api/v1/companies", gin.H{"name": "Hevecam", "sector": "Agro", "region": region.ID}},
		{"/api/v1/job-demands", gin.H{"name": "Nurse", "region": region.ID}},
		{"/api/v1/specialties", gin.H{"region": region.ID, "gastronomy": "Poisson braisé"}},
		{"/api/v1/tourist-sites", gin.H{"name": "Chutes de la Lobé", "description": "Waterfall", "region": region.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tc.path, tc.body)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			created := decode[map[string]any](t, w)
			id := int64(created["id"].(float64))

			w = do(t, r, http.MethodGet, tc.path+"/"+itoa(id), nil)
			assert.Equal(t, http.StatusOK, w.Code)

			list := decode[[]map[string]any](t, do(t, r, http.MethodGet, tc.path, nil))
			assert.Len(t, list, 1)
		})
	}

	t.Run("unknown region is rejected", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/job-demands", gin.H{"name": "Pilot", "region": 999})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing region is rejected", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/departments", gin.H{"name": "Océan"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("overview", func(t *testing.T) {
		o := decode[domain.Overview](t, do(t, r, http.MethodGet, "/api/v1/overview", nil))
		assert.Equal(t, int64(1), o.TotalRegions)
		assert.Equal(t, int64(1), o.TotalCompanies)
		assert.Equal(t, 10.0, o.AverageDensity)
	})
}

func TestUniversities(t *testing.T) {
	r := setupRouter(t)
	region := createRegion(t, r, "Ouest")

	w := do(t, r, http.MethodPost, "/api/v1/universities", gin.H{"name": "Université de Dschang", "region": region.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uni := decode[domain.University](t, w)
	assert.Equal(t, domain.UniversityPublic, uni.Type)
	assert.Zero(t, uni.Students)

	t.Run("website must be a url", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/api/v1/universities/"+itoa(uni.ID), gin.H{"website": "not a url"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(t, r, http.MethodPatch, "/api/v1/universities/"+itoa(uni.ID), gin.H{"website": "https://www.univ-dschang.org"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("type labels are normalized on bind", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/universities", gin.H{
			"name": "Université Catholique d'Afrique Centrale", "region": region.ID, "type": "Privée",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decode[domain.University](t, w)
		assert.Equal(t, domain.UniversityPrivate, created.Type)

		// PUT without a type falls back to the default
		w = do(t, r, http.MethodPut, "/api/v1/universities/"+itoa(created.ID), gin.H{
			"name": "UCAC", "region": region.ID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, domain.UniversityPublic, decode[domain.University](t, w).Type)

		// PATCH keeps the stored type when the key is absent
		w = do(t, r, http.MethodPatch, "/api/v1/universities/"+itoa(created.ID), gin.H{"type": "private"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = do(t, r, http.MethodPatch, "/api/v1/universities/"+itoa(created.ID), gin.H{"students": 1200})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[domain.University](t, w)
		assert.Equal(t, domain.UniversityPrivate, got.Type)
		assert.Equal(t, int64(1200), got.Students)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/api/v1/universities/"+itoa(uni.ID), gin.H{"type": "mixed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("view nests faculties and gallery", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/faculties", gin.H{"name": "FASA", "university": uni.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		w = do(t, r, http.MethodPost, "/api/v1/university-galleries", gin.H{"image": "universities/gallery/x.jpg", "university": uni.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		view := decode[domain.UniversityView](t, do(t, r, http.MethodGet, "/api/v1/universities/"+itoa(uni.ID), nil))
		assert.Len(t, view.Faculties, 1)
		assert.Len(t, view.GalleryImages, 1)
		require.NotNil(t, view.Website)

		list := decode[[]domain.UniversityView](t, do(t, r, http.MethodGet, "/api/v1/universities", nil))
		require.Len(t, list, 1)
		assert.Equal(t, view, list[0])
	})
}

func TestInternalErrorsLogRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := sqldbtest.Open(t)
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	Register(r.Group("/api/v1"), service.New(repository.NewStore(db, sqldb.SQLite)))
	require.NoError(t, db.Close())

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "[error] request failed id=req-42 path=/api/v1/departments")
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
