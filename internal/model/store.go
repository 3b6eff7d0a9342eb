package model

import "time"

// Store is a tenant. Every user and category belongs to exactly one store.
type Store struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
