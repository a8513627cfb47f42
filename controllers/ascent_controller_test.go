package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/services"
)

// ascentRouter builds a router with the auth context pre-populated, the way
// the auth middleware would after resolving the user's grants
func ascentRouter(db *gorm.DB, userID string, grants []services.RegionGrant) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRegionGrants, grants)
	})

	ac := NewAscentController(db)
	r.GET("/ascents/feed", ac.GetFeed)
	r.GET("/ascents/route/:routeId", ac.GetRouteAscents)
	r.POST("/ascents/route/:routeId", ac.CreateAscent)
	return r
}

func seedRouteInArea(t *testing.T, db *gorm.DB, regionID uint, visibility string) models.Route {
	t.Helper()

	area := models.Area{Slug: "a-" + visibility, Name: "Area", RegionID: regionID, Visibility: visibility}
	require.NoError(t, db.Create(&area).Error)
	block := models.Block{Slug: "b-" + visibility, Name: "Block", AreaID: area.ID}
	require.NoError(t, db.Create(&block).Error)
	route := models.Route{Slug: "r-" + visibility, Name: "Route", BlockID: block.ID}
	require.NoError(t, db.Create(&route).Error)
	return route
}

func TestCreateAscentVisibilityGate(t *testing.T) {
	db := setupTestDB(t)

	region := models.Region{Name: "Greece", Slug: "greece"}
	require.NoError(t, db.Create(&region).Error)
	privateRoute := seedRouteInArea(t, db, region.ID, models.VisibilityPrivate)
	publicRoute := seedRouteInArea(t, db, region.ID, models.VisibilityPublic)

	post := func(r *gin.Engine, routeID uint) *httptest.ResponseRecorder {
		body := bytes.NewBufferString(`{"type":"send"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/ascents/route/%d", routeID), body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("no grants cannot log on a private-rooted route", func(t *testing.T) {
		w := post(ascentRouter(db, "outsider", nil), privateRoute.ID)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var count int64
		db.Model(&models.Ascent{}).Where("route_id = ?", privateRoute.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("no grants can log on a public-rooted route", func(t *testing.T) {
		w := post(ascentRouter(db, "outsider", nil), publicRoute.ID)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("read grant unlocks the private-rooted route", func(t *testing.T) {
		grants := []services.RegionGrant{{
			RegionID:    region.ID,
			Role:        models.RegionRoleUser,
			Permissions: []models.RegionPermission{models.RegionPermissionRead},
		}}
		w := post(ascentRouter(db, "member", grants), privateRoute.ID)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing route and hidden route are indistinguishable", func(t *testing.T) {
		w := post(ascentRouter(db, "outsider", nil), 99999)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetRouteAscentsVisibilityGate(t *testing.T) {
	db := setupTestDB(t)

	region := models.Region{Name: "Greece", Slug: "greece"}
	require.NoError(t, db.Create(&region).Error)
	privateRoute := seedRouteInArea(t, db, region.ID, models.VisibilityPrivate)

	require.NoError(t, db.Create(&models.Ascent{RouteID: privateRoute.ID, UserID: "member", Type: models.AscentTypeSend}).Error)

	get := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/ascents/route/%d", privateRoute.ID), nil)
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("hidden without a read grant", func(t *testing.T) {
		w := get(ascentRouter(db, "outsider", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("listed with a read grant", func(t *testing.T) {
		grants := []services.RegionGrant{{
			RegionID:    region.ID,
			Role:        models.RegionRoleUser,
			Permissions: []models.RegionPermission{models.RegionPermissionRead},
		}}
		w := get(ascentRouter(db, "member", grants))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFeedCursorPagination(t *testing.T) {
	db := setupTestDB(t)

	region := models.Region{Name: "Greece", Slug: "greece"}
	require.NoError(t, db.Create(&region).Error)
	publicRoute := seedRouteInArea(t, db, region.ID, models.VisibilityPublic)
	privateRoute := seedRouteInArea(t, db, region.ID, models.VisibilityPrivate)

	// Interleave visible and hidden entries so a plain offset would drift
	var publicIDs []uint
	for i := 0; i < 5; i++ {
		pub := models.Ascent{RouteID: publicRoute.ID, UserID: "climber", Type: models.AscentTypeSend}
		require.NoError(t, db.Create(&pub).Error)
		publicIDs = append(publicIDs, pub.ID)

		priv := models.Ascent{RouteID: privateRoute.ID, UserID: "climber", Type: models.AscentTypeSend}
		require.NoError(t, db.Create(&priv).Error)
	}

	r := ascentRouter(db, "outsider", nil)

	type feedPage struct {
		Feed       []models.Ascent `json:"feed"`
		NextCursor int             `json:"next_cursor"`
	}

	fetch := func(cursor int) feedPage {
		w := httptest.NewRecorder()
		url := "/ascents/feed?limit=2"
		if cursor > 0 {
			url = fmt.Sprintf("%s&cursor=%d", url, cursor)
		}
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var page feedPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		return page
	}

	var collected []uint
	cursor := 0
	for pages := 0; pages < 10; pages++ {
		page := fetch(cursor)
		for _, ascent := range page.Feed {
			collected = append(collected, ascent.ID)
		}
		if page.NextCursor == 0 || len(page.Feed) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	// Every public ascent exactly once, newest first, no hidden entries
	require.Len(t, collected, len(publicIDs))
	seen := make(map[uint]bool)
	for _, id := range collected {
		assert.False(t, seen[id], "ascent %d repeated across pages", id)
		seen[id] = true
	}
	for i := 0; i < len(collected)-1; i++ {
		assert.Greater(t, collected[i], collected[i+1])
	}
	for _, id := range publicIDs {
		assert.True(t, seen[id], "ascent %d skipped", id)
	}
}
