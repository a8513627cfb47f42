package controllers

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
		&models.User{},
		&models.Region{},
		&models.Area{},
		&models.Geolocation{},
		&models.Block{},
		&models.Route{},
		&models.Ascent{},
	))

	return db
}

func TestRoundedMean(t *testing.T) {
	assert.Nil(t, roundedMean(nil))

	four := roundedMean([]int{4})
	require.NotNil(t, four)
	assert.Equal(t, 4, *four)

	// 4 and 5 average to 4.5 and round up
	five := roundedMean([]int{4, 5})
	require.NotNil(t, five)
	assert.Equal(t, 5, *five)

	two := roundedMean([]int{1, 2, 3})
	require.NotNil(t, two)
	assert.Equal(t, 2, *two)
}

func TestEncodeAreaIDs(t *testing.T) {
	assert.Equal(t, ",1,4,9,", encodeAreaIDs([]int{1, 4, 9}))
	assert.Equal(t, ",7,", encodeAreaIDs([]int{7}))
}

func TestRecalculateRouteAggregates(t *testing.T) {
	db := setupTestDB(t)

	newRoute := func(gradeID *uint, rating *int) models.Route {
		route := models.Route{Name: "Test Route", GradeID: gradeID, Rating: rating}
		require.NoError(t, db.Create(&route).Error)
		return route
	}

	t.Run("route grade alone seeds the aggregate", func(t *testing.T) {
		grade := uint(10)
		route := newRoute(&grade, nil)

		recalculateRouteAggregates(db, route.ID)

		var updated models.Route
		require.NoError(t, db.First(&updated, "id = ?", route.ID).Error)
		require.NotNil(t, updated.UserGradeID)
		assert.Equal(t, uint(10), *updated.UserGradeID)
		assert.Nil(t, updated.UserRating)
	})

	t.Run("ascent values are averaged with the route's own", func(t *testing.T) {
		grade := uint(10)
		rating := 2
		route := newRoute(&grade, &rating)

		ascentGrade := uint(12)
		ascentRating := 3
		require.NoError(t, db.Create(&models.Ascent{RouteID: route.ID, UserID: "u1", Type: models.AscentTypeSend, GradeID: &ascentGrade, Rating: &ascentRating}).Error)

		recalculateRouteAggregates(db, route.ID)

		var updated models.Route
		require.NoError(t, db.First(&updated, "id = ?", route.ID).Error)
		// (10+12)/2 = 11, (2+3)/2 = 2.5 rounded to 3
		require.NotNil(t, updated.UserGradeID)
		assert.Equal(t, uint(11), *updated.UserGradeID)
		require.NotNil(t, updated.UserRating)
		assert.Equal(t, 3, *updated.UserRating)
	})

	t.Run("no contributing values clears the aggregate", func(t *testing.T) {
		route := newRoute(nil, nil)

		recalculateRouteAggregates(db, route.ID)

		var updated models.Route
		require.NoError(t, db.First(&updated, "id = ?", route.ID).Error)
		assert.Nil(t, updated.UserGradeID)
		assert.Nil(t, updated.UserRating)
	})

	t.Run("ascents without grades do not contribute", func(t *testing.T) {
		grade := uint(10)
		route := newRoute(&grade, nil)

		require.NoError(t, db.Create(&models.Ascent{RouteID: route.ID, UserID: "u2", Type: models.AscentTypeFlash}).Error)

		recalculateRouteAggregates(db, route.ID)

		var updated models.Route
		require.NoError(t, db.First(&updated, "id = ?", route.ID).Error)
		require.NotNil(t, updated.UserGradeID)
		assert.Equal(t, uint(10), *updated.UserGradeID)
	})
}
