package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cragbase-api/models"
)

func TestCheckRegionPermission(t *testing.T) {
	grants := []RegionGrant{
		{RegionID: 1, Role: models.RegionRoleUser, Permissions: []models.RegionPermission{models.RegionPermissionRead}},
		{RegionID: 2, Role: models.RegionRoleAdmin, Permissions: []models.RegionPermission{
			models.RegionPermissionRead,
			models.RegionPermissionEdit,
			models.RegionPermissionDelete,
			models.RegionPermissionAdmin,
		}},
	}

	regionOne := uint(1)
	regionTwo := uint(2)
	regionThree := uint(3)

	t.Run("granted permission", func(t *testing.T) {
		assert.True(t, CheckRegionPermission(grants, []models.RegionPermission{models.RegionPermissionRead}, &regionOne))
	})

	t.Run("missing permission in the right region", func(t *testing.T) {
		assert.False(t, CheckRegionPermission(grants, []models.RegionPermission{models.RegionPermissionEdit}, &regionOne))
	})

	t.Run("all required permissions must be held", func(t *testing.T) {
		required := []models.RegionPermission{models.RegionPermissionRead, models.RegionPermissionEdit}
		assert.False(t, CheckRegionPermission(grants, required, &regionOne))
		assert.True(t, CheckRegionPermission(grants, required, &regionTwo))
	})

	t.Run("no grant for the target region", func(t *testing.T) {
		assert.False(t, CheckRegionPermission(grants, []models.RegionPermission{models.RegionPermissionRead}, &regionThree))
	})

	t.Run("nil region always fails", func(t *testing.T) {
		assert.False(t, CheckRegionPermission(grants, []models.RegionPermission{models.RegionPermissionRead}, nil))
	})

	t.Run("empty requirement passes for a granted region", func(t *testing.T) {
		assert.True(t, CheckRegionPermission(grants, nil, &regionOne))
	})

	t.Run("no grants at all", func(t *testing.T) {
		assert.False(t, CheckRegionPermission(nil, []models.RegionPermission{models.RegionPermissionRead}, &regionOne))
	})
}

func TestCheckAppPermission(t *testing.T) {
	admin := []models.AppPermission{models.AppPermissionAdmin}

	assert.True(t, CheckAppPermission(admin, []models.AppPermission{models.AppPermissionAdmin}))
	assert.False(t, CheckAppPermission(nil, []models.AppPermission{models.AppPermissionAdmin}))
	assert.True(t, CheckAppPermission(nil, nil))
}

func TestDefaultRolePermissions(t *testing.T) {
	perms := DefaultRolePermissions()

	assert.Equal(t, []models.RegionPermission{models.RegionPermissionRead}, perms[models.RegionRoleUser])
	assert.Contains(t, perms[models.RegionRoleMaintainer], models.RegionPermissionEdit)
	assert.NotContains(t, perms[models.RegionRoleMaintainer], models.RegionPermissionDelete)
	assert.Contains(t, perms[models.RegionRoleAdmin], models.RegionPermissionAdmin)

	// Every role can read
	for role, held := range perms {
		assert.Contains(t, held, models.RegionPermissionRead, "role %s must include read", role)
	}
}

func TestPermissionServiceResolvesGrants(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RegionMember{}, &models.RolePermission{}))

	userID := "user-1"
	memberships := []models.RegionMember{
		{RegionID: 1, UserID: userID, Role: models.RegionRoleUser, IsActive: true},
		{RegionID: 2, UserID: userID, Role: models.RegionRoleMaintainer, IsActive: true},
		{RegionID: 3, UserID: userID, Role: models.RegionRoleAdmin, IsActive: false},
	}
	for i := range memberships {
		require.NoError(t, db.Create(&memberships[i]).Error)
	}

	// The inactive row must persist as inactive; a column default would
	// silently flip it on Create
	var stored models.RegionMember
	require.NoError(t, db.First(&stored, "region_id = ? AND user_id = ?", 3, userID).Error)
	assert.False(t, stored.IsActive)

	service := NewPermissionService(db)
	grants, err := service.ResolveUserGrants(userID)
	require.NoError(t, err)

	// The inactive membership does not grant anything
	require.Len(t, grants, 2)

	byRegion := make(map[uint]RegionGrant)
	for _, g := range grants {
		byRegion[g.RegionID] = g
	}
	assert.Equal(t, models.RegionRoleUser, byRegion[1].Role)
	assert.Equal(t, []models.RegionPermission{models.RegionPermissionRead}, byRegion[1].Permissions)
	assert.Contains(t, byRegion[2].Permissions, models.RegionPermissionEdit)
}

func TestPermissionServiceLoadsTableOverrides(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.RolePermission{}))

	// A trimmed-down table: region_user loses read, app_admin keeps admin
	rows := []models.RolePermission{
		{Role: string(models.RegionRoleUser), Permission: string(models.RegionPermissionEdit)},
		{Role: string(models.AppRoleAdmin), Permission: string(models.AppPermissionAdmin)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	service := NewPermissionService(db)

	assert.Equal(t, []models.RegionPermission{models.RegionPermissionEdit}, service.RegionRolePermissions(models.RegionRoleUser))
	assert.Equal(t, []models.AppPermission{models.AppPermissionAdmin}, service.AppRolePermissions(models.AppRoleAdmin))
	assert.Empty(t, service.AppRolePermissions(models.AppRoleUser))
}
