package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cragbase-api/models"
	"cragbase-api/services"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Region{},
		&models.RegionMember{},
		&models.RolePermission{},
		&models.Area{},
		&models.Geolocation{},
		&models.Block{},
		&models.Route{},
		&models.Ascent{},
		&models.Grade{},
		&models.Tag{},
		&models.RouteTag{},
		&models.FirstAscent{},
		&models.RouteExternalResource{},
		&models.Topo{},
		&models.TopoRoute{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Add custom indexes for better query performance
	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Slug uniqueness within the parent scope: siblings under a parent, or
	// region roots when parent_id is null
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_areas_parent_slug ON areas(parent_id, slug) WHERE parent_id IS NOT NULL").Error; err != nil {
		fmt.Printf("Warning: Could not create index for areas: %v\n", err)
	}

	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_areas_region_root_slug ON areas(region_id, slug) WHERE parent_id IS NULL").Error; err != nil {
		fmt.Printf("Warning: Could not create index for root areas: %v\n", err)
	}

	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_blocks_area_slug ON blocks(area_id, slug)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for blocks: %v\n", err)
	}

	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_routes_block_slug ON routes(block_id, slug) WHERE slug <> ''").Error; err != nil {
		fmt.Printf("Warning: Could not create index for routes: %v\n", err)
	}

	// Feed and notification queries
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_ascents_created ON ascents(created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for ascents: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_created ON notifications(target_user_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notifications: %v\n", err)
	}

	return nil
}

// SeedData populates the static reference tables: the grade conversion
// ladder and the role→permission rows.
func SeedData(db *gorm.DB) error {
	if err := seedGrades(db); err != nil {
		return err
	}
	return seedRolePermissions(db)
}

func seedGrades(db *gorm.DB) error {
	var gradeCount int64
	db.Model(&models.Grade{}).Count(&gradeCount)
	if gradeCount > 0 {
		return nil
	}

	// Fontainebleau ladder with V-scale equivalents. The ordinal id is what
	// grade averaging works on.
	ladder := []models.Grade{
		{FB: "3", V: "VB"},
		{FB: "4", V: "V0"},
		{FB: "5", V: "V1"},
		{FB: "5+", V: "V1"},
		{FB: "6A", V: "V3"},
		{FB: "6A+", V: "V3"},
		{FB: "6B", V: "V4"},
		{FB: "6B+", V: "V4"},
		{FB: "6C", V: "V5"},
		{FB: "6C+", V: "V5"},
		{FB: "7A", V: "V6"},
		{FB: "7A+", V: "V7"},
		{FB: "7B", V: "V8"},
		{FB: "7B+", V: "V8"},
		{FB: "7C", V: "V9"},
		{FB: "7C+", V: "V10"},
		{FB: "8A", V: "V11"},
		{FB: "8A+", V: "V12"},
		{FB: "8B", V: "V13"},
		{FB: "8B+", V: "V14"},
		{FB: "8C", V: "V15"},
		{FB: "8C+", V: "V16"},
	}

	for _, grade := range ladder {
		if err := db.Create(&grade).Error; err != nil {
			return fmt.Errorf("failed to seed grade %s: %w", grade.FB, err)
		}
	}
	return nil
}

func seedRolePermissions(db *gorm.DB) error {
	var count int64
	db.Model(&models.RolePermission{}).Count(&count)
	if count > 0 {
		return nil
	}

	for role, permissions := range services.DefaultRolePermissions() {
		for _, permission := range permissions {
			row := models.RolePermission{Role: string(role), Permission: string(permission)}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed role permission: %w", err)
			}
		}
	}

	for role, permissions := range services.DefaultAppRolePermissions() {
		for _, permission := range permissions {
			row := models.RolePermission{Role: string(role), Permission: string(permission)}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed app role permission: %w", err)
			}
		}
	}

	return nil
}
