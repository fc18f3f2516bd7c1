package database

import "chirp/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come before the tables pointing at them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostImage{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
	}
}
