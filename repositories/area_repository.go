package repositories

import (
	"errors"

	"gorm.io/gorm"

	"cragbase-api/models"
)

// AreaQuery is the declarative shape of a bounded-depth nested area fetch:
// each level pulls its parking locations and optionally one more parent
// level. The persistence layer turns it into preload paths.
type AreaQuery struct {
	ParkingLocations bool
	Parent           *AreaQuery
}

// BuildNestedAreaQuery produces a fetch spec that loads depth+1 nested
// parent levels, each with its parking locations. Depth 0 loads the
// immediate parent only. The default depth is models.MaxAreaNestingDepth so
// the full chain to root always comes back in one round trip instead of N+1
// recursive fetches.
func BuildNestedAreaQuery(depth int) *AreaQuery {
	q := &AreaQuery{ParkingLocations: true}
	if depth > 0 {
		q.Parent = BuildNestedAreaQuery(depth - 1)
	} else {
		q.Parent = &AreaQuery{ParkingLocations: true}
	}
	return q
}

// ParentLevels counts how many nested parent levels the query loads
func (q *AreaQuery) ParentLevels() int {
	levels := 0
	for p := q.Parent; p != nil; p = p.Parent {
		levels++
	}
	return levels
}

// PreloadPaths flattens the query shape into gorm preload paths, e.g.
// ["ParkingLocations", "Parent", "Parent.ParkingLocations", ...]
func (q *AreaQuery) PreloadPaths() []string {
	var paths []string
	if q.ParkingLocations {
		paths = append(paths, "ParkingLocations")
	}
	if q.Parent != nil {
		paths = append(paths, "Parent")
		for _, p := range q.Parent.PreloadPaths() {
			paths = append(paths, "Parent."+p)
		}
	}
	return paths
}

// Apply attaches the preload paths to a query
func (q *AreaQuery) Apply(tx *gorm.DB) *gorm.DB {
	for _, path := range q.PreloadPaths() {
		tx = tx.Preload(path)
	}
	return tx
}

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// GetArea fetches an area with its ancestor chain preloaded depth+1 levels up
func (r *AreaRepository) GetArea(id uint, depth int) (*models.Area, error) {
	var area models.Area
	tx := BuildNestedAreaQuery(depth).Apply(r.db)
	if err := tx.First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

// GetAreaWithContents fetches an area with the full ancestor chain plus its
// children, blocks (with routes and geolocation) and parking locations.
func (r *AreaRepository) GetAreaWithContents(id uint) (*models.Area, error) {
	var area models.Area
	tx := BuildNestedAreaQuery(models.MaxAreaNestingDepth).Apply(r.db).
		Preload("Children").
		Preload("Blocks").
		Preload("Blocks.Geolocation").
		Preload("Blocks.Routes")
	if err := tx.First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

// AncestorIDs walks the loaded parent chain and returns the area ids
// root-first, including the area itself.
func AncestorIDs(area *models.Area) []int {
	var ids []int
	for a := area; a != nil; a = a.Parent {
		ids = append([]int{int(a.ID)}, ids...)
	}
	return ids
}

// ChainLength counts the loaded ancestor chain including the area itself.
// Used to reject children that would exceed the nesting depth limit.
func ChainLength(area *models.Area) int {
	length := 0
	for a := area; a != nil; a = a.Parent {
		length++
	}
	return length
}

// SlugTaken checks slug uniqueness within the parent scope: among siblings
// under the same parent, or among region roots when parentID is nil.
// Returns the name of the colliding area when taken.
func (r *AreaRepository) SlugTaken(slug string, parentID *uint, regionID uint, excludeID uint) (bool, string, error) {
	var existing models.Area
	tx := r.db.Where("slug = ? AND id <> ?", slug, excludeID)
	if parentID != nil {
		tx = tx.Where("parent_id = ?", *parentID)
	} else {
		tx = tx.Where("parent_id IS NULL AND region_id = ?", regionID)
	}

	err := tx.First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", nil
		}
		return false, "", err
	}
	return true, existing.Name, nil
}

// CountChildren returns the number of child areas and blocks below an area
func (r *AreaRepository) CountChildren(areaID uint) (childAreas int64, blocks int64, err error) {
	if err = r.db.Model(&models.Area{}).Where("parent_id = ?", areaID).Count(&childAreas).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.Model(&models.Block{}).Where("area_id = ?", areaID).Count(&blocks).Error; err != nil {
		return 0, 0, err
	}
	return childAreas, blocks, nil
}

// CollectRoutes gathers all routes below an area: its own blocks' routes plus
// a recursive descent into subareas. Depth is bounded by the nesting limit.
func (r *AreaRepository) CollectRoutes(areaID uint) ([]models.Route, error) {
	return r.collectRoutes(areaID, 0)
}

func (r *AreaRepository) collectRoutes(areaID uint, depth int) ([]models.Route, error) {
	if depth > models.MaxAreaNestingDepth {
		return nil, nil
	}

	var blocks []models.Block
	if err := r.db.Preload("Routes").Where("area_id = ?", areaID).Find(&blocks).Error; err != nil {
		return nil, err
	}

	var routes []models.Route
	for _, block := range blocks {
		routes = append(routes, block.Routes...)
	}

	var children []models.Area
	if err := r.db.Where("parent_id = ?", areaID).Find(&children).Error; err != nil {
		return nil, err
	}
	for _, child := range children {
		childRoutes, err := r.collectRoutes(child.ID, depth+1)
		if err != nil {
			return nil, err
		}
		routes = append(routes, childRoutes...)
	}

	return routes, nil
}
