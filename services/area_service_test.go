package services

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
		&models.Grade{},
	))

	return db
}

// chainOfFour builds an in-memory four-level area chain, leaf first
func chainOfFour() *models.Area {
	greatGrandparent := &models.Area{ID: 4, Slug: "great-grandparent-area", Name: "Great Grandparent Area"}
	grandparent := &models.Area{ID: 3, Slug: "grandparent-area", Name: "Grandparent Area", ParentID: &greatGrandparent.ID, Parent: greatGrandparent}
	parent := &models.Area{ID: 2, Slug: "parent-area", Name: "Parent Area", ParentID: &grandparent.ID, Parent: grandparent}
	child := &models.Area{ID: 1, Slug: "child-area", Name: "Child Area", ParentID: &parent.ID, Parent: parent}
	return child
}

func TestAreaPathname(t *testing.T) {
	t.Run("root area", func(t *testing.T) {
		area := &models.Area{ID: 12, Slug: "greece"}
		pathname, ok := AreaPathname(area)
		require.True(t, ok)
		assert.Equal(t, "/areas/greece-12", pathname)
	})

	t.Run("full chain is rendered root-first", func(t *testing.T) {
		pathname, ok := AreaPathname(chainOfFour())
		require.True(t, ok)
		assert.Equal(t, "/areas/great-grandparent-area-4/grandparent-area-3/parent-area-2/child-area-1", pathname)
	})

	t.Run("chain not loaded to the root", func(t *testing.T) {
		parentID := uint(9)
		area := &models.Area{ID: 1, Slug: "orphan", ParentID: &parentID}
		_, ok := AreaPathname(area)
		assert.False(t, ok)
	})
}

func TestBlockAndRoutePathnames(t *testing.T) {
	area := &models.Area{ID: 12, Slug: "greece"}
	block := &models.Block{ID: 7, Slug: "red-boulder", Area: area}

	t.Run("block path carries the separator segment", func(t *testing.T) {
		pathname, ok := BlockPathname(block)
		require.True(t, ok)
		assert.Equal(t, "/areas/greece-12/_/red-boulder", pathname)
	})

	t.Run("route with slug", func(t *testing.T) {
		route := &models.Route{ID: 99, Slug: "traverse", Block: block}
		pathname, ok := RoutePathname(route)
		require.True(t, ok)
		assert.Equal(t, "/areas/greece-12/_/red-boulder/traverse", pathname)
	})

	t.Run("slugless route falls back to its id", func(t *testing.T) {
		route := &models.Route{ID: 99, Slug: "", Block: block}
		pathname, ok := RoutePathname(route)
		require.True(t, ok)
		assert.Equal(t, "/areas/greece-12/_/red-boulder/99", pathname)
	})

	t.Run("ascent appends its id", func(t *testing.T) {
		route := &models.Route{ID: 99, Slug: "traverse", Block: block}
		ascent := &models.Ascent{ID: 5, Route: route}
		pathname, ok := AscentPathname(ascent)
		require.True(t, ok)
		assert.Equal(t, "/areas/greece-12/_/red-boulder/traverse/5", pathname)
	})

	t.Run("block without area cannot be addressed", func(t *testing.T) {
		_, ok := BlockPathname(&models.Block{ID: 7, Slug: "lost"})
		assert.False(t, ok)
	})
}

func TestEnrichmentDoesNotMutateInput(t *testing.T) {
	leaf := chainOfFour()

	enriched := EnrichArea(leaf)

	assert.NotEmpty(t, enriched.Pathname)
	assert.NotEmpty(t, enriched.Parent.Pathname)
	assert.Equal(t, "/areas/great-grandparent-area-4/grandparent-area-3/parent-area-2", enriched.Parent.Pathname)

	// The originals are untouched
	assert.Empty(t, leaf.Pathname)
	assert.Empty(t, leaf.Parent.Pathname)
	assert.NotSame(t, leaf, enriched)
	assert.NotSame(t, leaf.Parent, enriched.Parent)
}

func TestEnrichRouteChain(t *testing.T) {
	area := &models.Area{ID: 12, Slug: "greece"}
	block := &models.Block{ID: 7, Slug: "red-boulder", Area: area}
	route := &models.Route{ID: 99, Slug: "traverse", Block: block}

	enriched := EnrichRoute(route)

	assert.Equal(t, "/areas/greece-12/_/red-boulder/traverse", enriched.Pathname)
	assert.Equal(t, "/areas/greece-12/_/red-boulder", enriched.Block.Pathname)
	assert.Equal(t, "/areas/greece-12", enriched.Block.Area.Pathname)
	assert.Empty(t, route.Pathname)
	assert.Empty(t, block.Pathname)
}

func TestGetStatsOfArea(t *testing.T) {
	db := setupTestDB(t)

	region := models.Region{Name: "Greece", Slug: "greece"}
	require.NoError(t, db.Create(&region).Error)
	area := models.Area{Slug: "kalogria", Name: "Kalogria", RegionID: region.ID}
	require.NoError(t, db.Create(&area).Error)
	block := models.Block{Slug: "red-boulder", Name: "Red Boulder", AreaID: area.ID}
	require.NoError(t, db.Create(&block).Error)

	require.NoError(t, db.Create(&models.Grade{ID: 10, FB: "6a", V: "V3"}).Error)
	require.NoError(t, db.Create(&models.Grade{ID: 12, FB: "6b", V: "V4"}).Error)

	gradeBase := uint(10)
	gradeUser := uint(12)
	gradeMissing := uint(999)
	routes := []models.Route{
		{Name: "Base Graded", Slug: "base-graded", BlockID: block.ID, GradeID: &gradeBase},
		{Name: "User Graded", Slug: "user-graded", BlockID: block.ID, GradeID: &gradeBase, UserGradeID: &gradeUser},
		{Name: "Ungraded", Slug: "ungraded", BlockID: block.ID},
		{Name: "Stale Grade", Slug: "stale-grade", BlockID: block.ID, GradeID: &gradeMissing},
	}
	for i := range routes {
		require.NoError(t, db.Create(&routes[i]).Error)
	}

	service := NewAreaService(db)

	t.Run("FB scale", func(t *testing.T) {
		stats, err := service.GetStatsOfArea(area.ID, models.GradingScaleFB)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.NumOfRoutes)
		require.Len(t, stats.Grades, 4)

		require.NotNil(t, stats.Grades[0])
		assert.Equal(t, "6a", *stats.Grades[0])
		// User-aggregated grade wins over the base grade
		require.NotNil(t, stats.Grades[1])
		assert.Equal(t, "6b", *stats.Grades[1])
		assert.Nil(t, stats.Grades[2])
		assert.Nil(t, stats.Grades[3])
	})

	t.Run("V scale", func(t *testing.T) {
		stats, err := service.GetStatsOfArea(area.ID, models.GradingScaleV)
		require.NoError(t, err)
		require.NotNil(t, stats.Grades[0])
		assert.Equal(t, "V3", *stats.Grades[0])
	})
}

func TestGetStatsOfBlocks(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Grade{ID: 10, FB: "6a", V: "V3"}).Error)

	gradeID := uint(10)
	blocks := []models.Block{
		{Routes: []models.Route{{Name: "One", GradeID: &gradeID}, {Name: "Two"}}},
		{Routes: []models.Route{{Name: "Three", GradeID: &gradeID}}},
	}

	service := NewAreaService(db)
	stats := service.GetStatsOfBlocks(blocks, models.GradingScaleFB)

	assert.Equal(t, 3, stats.NumOfRoutes)
	require.Len(t, stats.Grades, 3)
	require.NotNil(t, stats.Grades[0])
	assert.Equal(t, "6a", *stats.Grades[0])
	assert.Nil(t, stats.Grades[1])
}

func TestVisibleBlocks(t *testing.T) {
	publicRoot := &models.Area{ID: 1, Slug: "open", Visibility: models.VisibilityPublic}
	privateRoot := &models.Area{ID: 2, Slug: "secret", Visibility: models.VisibilityPrivate}
	childOfPrivate := &models.Area{ID: 3, Slug: "inner", Visibility: models.VisibilityPublic, ParentID: &privateRoot.ID, Parent: privateRoot}

	blocks := []models.Block{
		{ID: 1, Slug: "visible", Area: publicRoot},
		{ID: 2, Slug: "hidden", Area: privateRoot},
		{ID: 3, Slug: "hidden-by-root", Area: childOfPrivate},
		{ID: 4, Slug: "no-area"},
	}

	visible := VisibleBlocks(blocks)

	require.Len(t, visible, 1)
	assert.Equal(t, "visible", visible[0].Slug)
}
