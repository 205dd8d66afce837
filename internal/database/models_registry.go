package database

import "blogfeed/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for foreign keys.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	}
}
