package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrFixtureNotFound = errors.New("fixture not found")
	ErrFixtureInvalid  = errors.New("fixture is not valid JSON")
)

// Document is the fixture layout. Keys are camelCase and matched exactly.
type Document struct {
	Regions      []RegionEntry     `json:"regions"`
	Universities []UniversityEntry `json:"universities"`
}

type RegionEntry struct {
	Name           string             `json:"name"`
	Capital        string             `json:"capital"`
	Population     *int64             `json:"population"`
	Area           *int64             `json:"area"`
	MainImage      *string            `json:"mainImage"`
	Departments    []string           `json:"departments"`
	MajorCompanies []CompanyEntry     `json:"majorCompanies"`
	JobDemand      []string           `json:"jobDemand"`
	Specialties    *SpecialtyEntry    `json:"specialties"`
	TouristSites   []TouristSiteEntry `json:"touristSites"`
}

type CompanyEntry struct {
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

type SpecialtyEntry struct {
	Gastronomy    *string `json:"gastronomy"`
	Professions   *string `json:"professions"`
	Entertainment *string `json:"entertainment"`
}

type TouristSiteEntry struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    *string `json:"location"`
	Image       *string `json:"image"`
}

type UniversityEntry struct {
	Name          string   `json:"name"`
	Region        string   `json:"region"`
	Founded       *int64   `json:"founded"`
	Type          string   `json:"type"`
	Students      *int64   `json:"students"`
	Website       *string  `json:"website"`
	Description   *string  `json:"description"`
	MainImage     *string  `json:"mainImage"`
	Faculties     []string `json:"faculties"`
	GalleryImages []string `json:"galleryImages"`
}

// ReadFile parses the fixture at path. It never touches the database, so a
// missing or malformed file leaves the store as it was.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFixtureInvalid, err)
	}
	return &doc, nil
}
