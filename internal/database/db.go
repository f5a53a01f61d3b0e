package database

import (
	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates
// the identity and auditing schema.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Action{},
		&model.Function{},
		&model.ActionInFunction{},
		&model.Permission{},
		&model.Trail{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
