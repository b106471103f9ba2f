package domain

// Region is the root of the regional aggregate. Departments, companies, job
// demands, tourist sites, the specialty record and universities all hang off it
// and are removed with it.
type Region struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" binding:"required,max=100"`
	Capital    string  `json:"capital" binding:"required,max=100"`
	Population int64   `json:"population" binding:"gte=0"`
	Area       int64   `json:"area" binding:"gte=0"`
	MainImage  *string `json:"main_image"`
}

type Department struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" binding:"required,max=100"`
	RegionID int64  `json:"region" binding:"required"`
}

type Company struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" binding:"required,max=150"`
	Sector   string `json:"sector" binding:"required,max=100"`
	RegionID int64  `json:"region" binding:"required"`
}

type JobDemand struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" binding:"required,max=100"`
	RegionID int64  `json:"region" binding:"required"`
}

// Specialty holds free text about a region. A region has at most one.
type Specialty struct {
	ID            int64   `json:"id"`
	RegionID      int64   `json:"region" binding:"required"`
	Gastronomy    *string `json:"gastronomy"`
	Professions   *string `json:"professions"`
	Entertainment *string `json:"entertainment"`
}

type TouristSite struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" binding:"required,max=150"`
	Description string  `json:"description" binding:"required"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Image       *string `json:"image"`
	RegionID    int64   `json:"region" binding:"required"`
}

// University is the root of the university aggregate. Its region is resolved by
// name when loading fixtures and stored as a foreign key.
type University struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name" binding:"required,max=200"`
	RegionID    int64          `json:"region" binding:"required"`
	Founded     *int64         `json:"founded" binding:"omitempty,gte=0"`
	Type        UniversityType `json:"type" binding:"oneof=public private"`
	Students    int64          `json:"students" binding:"gte=0"`
	Website     *string        `json:"website" binding:"omitempty,max=200"`
	Description *string        `json:"description"`
	MainImage   *string        `json:"main_image"`
}

type Faculty struct {
	ID           int64  `json:"id"`
	Name         string `json:"name" binding:"required,max=150"`
	UniversityID int64  `json:"university" binding:"required"`
}

type UniversityGallery struct {
	ID           int64  `json:"id"`
	Image        string `json:"image" binding:"required"`
	UniversityID int64  `json:"university" binding:"required"`
}

// RegionView is the read-only composite returned by the regions resource.
type RegionView struct {
	Region
	Departments    []Department  `json:"departments"`
	MajorCompanies []Company     `json:"major_companies"`
	JobDemands     []JobDemand   `json:"job_demands"`
	Specialties    *Specialty    `json:"specialties"`
	TouristSites   []TouristSite `json:"tourist_sites"`
}

// UniversityView is the read-only composite returned by the universities resource.
type UniversityView struct {
	University
	Faculties     []Faculty           `json:"faculties"`
	GalleryImages []UniversityGallery `json:"gallery_images"`
}

// Overview aggregates country-wide figures over the whole catalog.
type Overview struct {
	TotalRegions         int64   `json:"total_regions"`
	TotalDepartments     int64   `json:"total_departments"`
	TotalCompanies       int64   `json:"total_companies"`
	TotalTouristSites    int64   `json:"total_tourist_sites"`
	TotalUniversities    int64   `json:"total_universities"`
	TotalPopulation      int64   `json:"total_population"`
	TotalArea            int64   `json:"total_area"`
	TotalStudents        int64   `json:"total_students"`
	AverageDensity       float64 `json:"average_density"`
	AverageUniversityAge int64   `json:"average_university_age"`
}
