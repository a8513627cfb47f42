package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"

	"cragbase-api/models"
	"cragbase-api/repositories"
)

// Pathname builders walk the eagerly loaded parent relations root-first.
// They return ok=false when a required relation is missing (block without
// area, route without block, ascent without route); callers treat that as
// "cannot address this entity", not as a server error.

// AreaPathname builds "/areas/{slug}-{id}/..." from the loaded parent chain
func AreaPathname(area *models.Area) (string, bool) {
	segments, ok := areaSegments(area)
	if !ok {
		return "", false
	}
	return "/areas/" + strings.Join(segments, "/"), true
}

// BlockPathname appends the block slug below a fixed "_" separator segment
func BlockPathname(block *models.Block) (string, bool) {
	if block.Area == nil {
		return "", false
	}
	base, ok := AreaPathname(block.Area)
	if !ok {
		return "", false
	}
	return base + "/_/" + block.Slug, true
}

// RoutePathname appends the route slug, falling back to the numeric id when
// the slug is empty.
func RoutePathname(route *models.Route) (string, bool) {
	if route.Block == nil {
		return "", false
	}
	base, ok := BlockPathname(route.Block)
	if !ok {
		return "", false
	}
	segment := route.Slug
	if segment == "" {
		segment = strconv.Itoa(int(route.ID))
	}
	return base + "/" + segment, true
}

// AscentPathname appends the ascent's numeric id
func AscentPathname(ascent *models.Ascent) (string, bool) {
	if ascent.Route == nil {
		return "", false
	}
	base, ok := RoutePathname(ascent.Route)
	if !ok {
		return "", false
	}
	return base + "/" + strconv.Itoa(int(ascent.ID)), true
}

func areaSegments(area *models.Area) ([]string, bool) {
	var segments []string
	for a := area; a != nil; a = a.Parent {
		segments = append([]string{fmt.Sprintf("%s-%d", a.Slug, a.ID)}, segments...)
		if a.Parent == nil && a.ParentID != nil {
			// Chain was not loaded deep enough to reach the root
			return nil, false
		}
	}
	return segments, true
}

// EnrichArea returns a shallow copy with the derived pathname attached; the
// parent chain is replaced by its own enriched copies bottom-up. Relational
// identity of the input is never mutated.
func EnrichArea(area *models.Area) *models.Area {
	if area == nil {
		return nil
	}
	enriched := *area
	enriched.Parent = EnrichArea(area.Parent)
	if pathname, ok := AreaPathname(&enriched); ok {
		enriched.Pathname = pathname
	}
	return &enriched
}

// EnrichBlock returns a shallow copy with pathname and enriched area chain
func EnrichBlock(block *models.Block) *models.Block {
	if block == nil {
		return nil
	}
	enriched := *block
	enriched.Area = EnrichArea(block.Area)
	if pathname, ok := BlockPathname(&enriched); ok {
		enriched.Pathname = pathname
	}
	return &enriched
}

// EnrichRoute returns a shallow copy with pathname and enriched block chain
func EnrichRoute(route *models.Route) *models.Route {
	if route == nil {
		return nil
	}
	enriched := *route
	enriched.Block = EnrichBlock(route.Block)
	if pathname, ok := RoutePathname(&enriched); ok {
		enriched.Pathname = pathname
	}
	return &enriched
}

// EnrichAscent returns a shallow copy with pathname and enriched route chain
func EnrichAscent(ascent *models.Ascent) *models.Ascent {
	if ascent == nil {
		return nil
	}
	enriched := *ascent
	enriched.Route = EnrichRoute(ascent.Route)
	if pathname, ok := AscentPathname(&enriched); ok {
		enriched.Pathname = pathname
	}
	return &enriched
}

// AreaStats aggregates the routes below an area or block. Grade entries are
// nil when a route's grade cannot be resolved; callers must not assume all
// entries are set.
type AreaStats struct {
	NumOfRoutes int       `json:"num_of_routes"`
	Grades      []*string `json:"grades"`
}

type AreaService struct {
	db       *gorm.DB
	areaRepo *repositories.AreaRepository

	gradesOnce sync.Once
	grades     map[uint]models.Grade
}

func NewAreaService(db *gorm.DB) *AreaService {
	return &AreaService{
		db:       db,
		areaRepo: repositories.NewAreaRepository(db),
	}
}

// gradeTable lazily loads the grade conversion table once per process
func (s *AreaService) gradeTable() map[uint]models.Grade {
	s.gradesOnce.Do(func() {
		s.grades = make(map[uint]models.Grade)
		var rows []models.Grade
		if err := s.db.Find(&rows).Error; err != nil {
			return
		}
		for _, g := range rows {
			s.grades[g.ID] = g
		}
	})
	return s.grades
}

// GetStatsOfArea collects all routes under an area (own blocks plus
// recursive descent into subareas) and resolves each route's display grade
// for the requesting user's grading scale.
func (s *AreaService) GetStatsOfArea(areaID uint, scale models.GradingScale) (*AreaStats, error) {
	routes, err := s.areaRepo.CollectRoutes(areaID)
	if err != nil {
		return nil, err
	}
	return s.statsOfRoutes(routes, scale), nil
}

// GetStatsOfBlocks aggregates the routes of the given blocks
func (s *AreaService) GetStatsOfBlocks(blocks []models.Block, scale models.GradingScale) *AreaStats {
	var routes []models.Route
	for _, block := range blocks {
		routes = append(routes, block.Routes...)
	}
	return s.statsOfRoutes(routes, scale)
}

func (s *AreaService) statsOfRoutes(routes []models.Route, scale models.GradingScale) *AreaStats {
	stats := &AreaStats{
		NumOfRoutes: len(routes),
		Grades:      make([]*string, 0, len(routes)),
	}

	grades := s.gradeTable()
	for _, route := range routes {
		stats.Grades = append(stats.Grades, displayGradeOfRoute(route, grades, scale))
	}
	return stats
}

// displayGradeOfRoute prefers the user-aggregated grade over the base grade.
// A miss in the grade table yields nil, intentionally tolerated.
func displayGradeOfRoute(route models.Route, grades map[uint]models.Grade, scale models.GradingScale) *string {
	gradeID := route.GradeID
	if route.UserGradeID != nil {
		gradeID = route.UserGradeID
	}
	if gradeID == nil {
		return nil
	}

	grade, ok := grades[*gradeID]
	if !ok {
		return nil
	}
	display := grade.DisplayGrade(scale)
	return &display
}

// VisibleBlocks filters out blocks whose root-ancestor area is private.
// The check walks the loaded parent chain to the root.
func VisibleBlocks(blocks []models.Block) []models.Block {
	visible := make([]models.Block, 0, len(blocks))
	for _, block := range blocks {
		if block.Area == nil {
			continue
		}
		if rootVisibility(block.Area) == models.VisibilityPrivate {
			continue
		}
		visible = append(visible, block)
	}
	return visible
}

func rootVisibility(area *models.Area) string {
	a := area
	for a.Parent != nil {
		a = a.Parent
	}
	return a.Visibility
}
