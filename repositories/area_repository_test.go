package repositories

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cragbase-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Region{},
		&models.Area{},
		&models.Geolocation{},
		&models.Block{},
		&models.Route{},
	))

	return db
}

// seedAreaChain creates a four-level chain and returns the areas root-first
func seedAreaChain(t *testing.T, db *gorm.DB) []models.Area {
	t.Helper()

	region := models.Region{Name: "Greece", Slug: "greece"}
	require.NoError(t, db.Create(&region).Error)

	names := []string{"Euboea", "Rovies", "Kalogria", "Main Wall"}
	areas := make([]models.Area, 0, len(names))

	var parentID *uint
	for _, name := range names {
		area := models.Area{
			Slug:     slugify(name),
			Name:     name,
			RegionID: region.ID,
			ParentID: parentID,
		}
		require.NoError(t, db.Create(&area).Error)
		parentID = &area.ID
		areas = append(areas, area)
	}
	return areas
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

func TestBuildNestedAreaQuery(t *testing.T) {
	t.Run("depth zero loads one parent level", func(t *testing.T) {
		q := BuildNestedAreaQuery(0)
		assert.Equal(t, 1, q.ParentLevels())
		assert.Equal(t, []string{"ParkingLocations", "Parent", "Parent.ParkingLocations"}, q.PreloadPaths())
	})

	t.Run("depth one loads two parent levels", func(t *testing.T) {
		q := BuildNestedAreaQuery(1)
		assert.Equal(t, 2, q.ParentLevels())
		assert.Contains(t, q.PreloadPaths(), "Parent.Parent.ParkingLocations")
	})

	t.Run("default depth covers the whole chain", func(t *testing.T) {
		q := BuildNestedAreaQuery(models.MaxAreaNestingDepth)
		assert.Equal(t, models.MaxAreaNestingDepth+1, q.ParentLevels())
	})

	t.Run("every level requests parking locations", func(t *testing.T) {
		q := BuildNestedAreaQuery(2)
		for p := q; p != nil; p = p.Parent {
			assert.True(t, p.ParkingLocations)
		}
	})
}

func TestGetAreaLoadsAncestorChain(t *testing.T) {
	db := setupTestDB(t)
	areas := seedAreaChain(t, db)
	repo := NewAreaRepository(db)

	leaf, err := repo.GetArea(areas[3].ID, models.MaxAreaNestingDepth)
	require.NoError(t, err)

	// Walk up: main-wall -> kalogria -> rovies -> euboea
	require.NotNil(t, leaf.Parent)
	require.NotNil(t, leaf.Parent.Parent)
	require.NotNil(t, leaf.Parent.Parent.Parent)
	assert.Equal(t, "euboea", leaf.Parent.Parent.Parent.Slug)
	assert.Nil(t, leaf.Parent.Parent.Parent.Parent)
}

func TestAncestorIDs(t *testing.T) {
	db := setupTestDB(t)
	areas := seedAreaChain(t, db)
	repo := NewAreaRepository(db)

	leaf, err := repo.GetArea(areas[3].ID, models.MaxAreaNestingDepth)
	require.NoError(t, err)

	ids := AncestorIDs(leaf)
	expected := []int{int(areas[0].ID), int(areas[1].ID), int(areas[2].ID), int(areas[3].ID)}
	assert.Equal(t, expected, ids)
	assert.Equal(t, 4, ChainLength(leaf))
}

func TestSlugTaken(t *testing.T) {
	db := setupTestDB(t)
	areas := seedAreaChain(t, db)
	repo := NewAreaRepository(db)

	t.Run("sibling collision", func(t *testing.T) {
		taken, name, err := repo.SlugTaken("rovies", areas[0].ParentID, areas[0].RegionID, 0)
		require.NoError(t, err)
		// rovies sits under euboea, not at the root
		assert.False(t, taken)
		assert.Empty(t, name)

		taken, name, err = repo.SlugTaken("rovies", &areas[0].ID, areas[0].RegionID, 0)
		require.NoError(t, err)
		assert.True(t, taken)
		assert.Equal(t, "Rovies", name)
	})

	t.Run("root collision scoped to region", func(t *testing.T) {
		taken, _, err := repo.SlugTaken("euboea", nil, areas[0].RegionID, 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, _, err = repo.SlugTaken("euboea", nil, areas[0].RegionID+1, 0)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("excluded id does not collide with itself", func(t *testing.T) {
		taken, _, err := repo.SlugTaken("euboea", nil, areas[0].RegionID, areas[0].ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestCountChildren(t *testing.T) {
	db := setupTestDB(t)
	areas := seedAreaChain(t, db)
	repo := NewAreaRepository(db)

	block := models.Block{Slug: "boulder-1", Name: "Boulder 1", AreaID: areas[3].ID}
	require.NoError(t, db.Create(&block).Error)

	childAreas, blocks, err := repo.CountChildren(areas[2].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), childAreas)
	assert.Equal(t, int64(0), blocks)

	childAreas, blocks, err = repo.CountChildren(areas[3].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), childAreas)
	assert.Equal(t, int64(1), blocks)
}

func TestCollectRoutes(t *testing.T) {
	db := setupTestDB(t)
	areas := seedAreaChain(t, db)
	repo := NewAreaRepository(db)

	// One block with a route at the second level, another at the leaf
	midBlock := models.Block{Slug: "mid", Name: "Mid", AreaID: areas[1].ID}
	require.NoError(t, db.Create(&midBlock).Error)
	leafBlock := models.Block{Slug: "leaf", Name: "Leaf", AreaID: areas[3].ID}
	require.NoError(t, db.Create(&leafBlock).Error)

	require.NoError(t, db.Create(&models.Route{Name: "Traverse", Slug: "traverse", BlockID: midBlock.ID}).Error)
	require.NoError(t, db.Create(&models.Route{Name: "Arete", Slug: "arete", BlockID: leafBlock.ID}).Error)
	require.NoError(t, db.Create(&models.Route{Name: "Sit Start", Slug: "sit-start", BlockID: leafBlock.ID}).Error)

	routes, err := repo.CollectRoutes(areas[1].ID)
	require.NoError(t, err)
	assert.Len(t, routes, 3)

	routes, err = repo.CollectRoutes(areas[3].ID)
	require.NoError(t, err)
	assert.Len(t, routes, 2)
}
