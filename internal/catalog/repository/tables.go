package repository

import "github.com/datakamer/datakamer-backend/internal/catalog/domain"

var regions = table[domain.Region]{
	name:    "regions",
	columns: []string{"name", "capital", "population", "area", "main_image"},
	id:      func(m *domain.Region) *int64 { return &m.ID },
	fields: func(m *domain.Region) []any {
		return []any{&m.Name, &m.Capital, &m.Population, &m.Area, &m.MainImage}
	},
	values: func(m *domain.Region) []any {
		return []any{m.Name, m.Capital, m.Population, m.Area, nullable(m.MainImage)}
	},
}

var departments = table[domain.Department]{
	name:    "departments",
	columns: []string{"name", "region_id"},
	parent:  "region_id",
	id:      func(m *domain.Department) *int64 { return &m.ID },
	fields:  func(m *domain.Department) []any { return []any{&m.Name, &m.RegionID} },
	values:  func(m *domain.Department) []any { return []any{m.Name, m.RegionID} },
	owner:   func(m *domain.Department) int64 { return m.RegionID },
}

var companies = table[domain.Company]{
	name:    "companies",
	columns: []string{"name", "sector", "region_id"},
	parent:  "region_id",
	id:      func(m *domain.Company) *int64 { return &m.ID },
	fields:  func(m *domain.Company) []any { return []any{&m.Name, &m.Sector, &m.RegionID} },
	values:  func(m *domain.Company) []any { return []any{m.Name, m.Sector, m.RegionID} },
	owner:   func(m *domain.Company) int64 { return m.RegionID },
}

var jobDemands = table[domain.JobDemand]{
	name:    "job_demands",
	columns: []string{"name", "region_id"},
	parent:  "region_id",
	id:      func(m *domain.JobDemand) *int64 { return &m.ID },
	fields:  func(m *domain.JobDemand) []any { return []any{&m.Name, &m.RegionID} },
	values:  func(m *domain.JobDemand) []any { return []any{m.Name, m.RegionID} },
	owner:   func(m *domain.JobDemand) int64 { return m.RegionID },
}

var specialties = table[domain.Specialty]{
	name:    "specialties",
	columns: []string{"region_id", "gastronomy", "professions", "entertainment"},
	parent:  "region_id",
	id:      func(m *domain.Specialty) *int64 { return &m.ID },
	fields: func(m *domain.Specialty) []any {
		return []any{&m.RegionID, &m.Gastronomy, &m.Professions, &m.Entertainment}
	},
	values: func(m *domain.Specialty) []any {
		return []any{m.RegionID, nullable(m.Gastronomy), nullable(m.Professions), nullable(m.Entertainment)}
	},
	owner: func(m *domain.Specialty) int64 { return m.RegionID },
}

var touristSites = table[domain.TouristSite]{
	name:    "tourist_sites",
	columns: []string{"name", "description", "location", "image", "region_id"},
	parent:  "region_id",
	id:      func(m *domain.TouristSite) *int64 { return &m.ID },
	fields: func(m *domain.TouristSite) []any {
		return []any{&m.Name, &m.Description, &m.Location, &m.Image, &m.RegionID}
	},
	values: func(m *domain.TouristSite) []any {
		return []any{m.Name, m.Description, nullable(m.Location), nullable(m.Image), m.RegionID}
	},
	owner: func(m *domain.TouristSite) int64 { return m.RegionID },
}

var universities = table[domain.University]{
	name: "universities",
	columns: []string{
		"name", "region_id", "founded", "type", "students", "website", "description", "main_image",
	},
	parent: "region_id",
	id:     func(m *domain.University) *int64 { return &m.ID },
	fields: func(m *domain.University) []any {
		return []any{
			&m.Name, &m.RegionID, &m.Founded, &m.Type, &m.Students,
			&m.Website, &m.Description, &m.MainImage,
		}
	},
	values: func(m *domain.University) []any {
		return []any{
			m.Name, m.RegionID, nullable(m.Founded), string(m.Type), m.Students,
			nullable(m.Website), nullable(m.Description), nullable(m.MainImage),
		}
	},
	owner: func(m *domain.University) int64 { return m.RegionID },
}

var faculties = table[domain.Faculty]{
	name:    "faculties",
	columns: []string{"name", "university_id"},
	parent:  "university_id",
	id:      func(m *domain.Faculty) *int64 { return &m.ID },
	fields:  func(m *domain.Faculty) []any { return []any{&m.Name, &m.UniversityID} },
	values:  func(m *domain.Faculty) []any { return []any{m.Name, m.UniversityID} },
	owner:   func(m *domain.Faculty) int64 { return m.UniversityID },
}

var galleries = table[domain.UniversityGallery]{
	name:    "university_galleries",
	columns: []string{"image", "university_id"},
	parent:  "university_id",
	id:      func(m *domain.UniversityGallery) *int64 { return &m.ID },
	fields:  func(m *domain.UniversityGallery) []any { return []any{&m.Image, &m.UniversityID} },
	values:  func(m *domain.UniversityGallery) []any { return []any{m.Image, m.UniversityID} },
	owner:   func(m *domain.UniversityGallery) int64 { return m.UniversityID },
}
