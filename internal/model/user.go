package model

import "time"

// User is a principal scoped to exactly one store. LoginID and Email are unique within the store only.
type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	StoreID   string    `json:"store_id" gorm:"type:uuid;not null;uniqueIndex:idx_users_store_login;uniqueIndex:idx_users_store_email" bson:"store_id"`
	LoginID   string    `json:"user_id" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_store_login" bson:"user_id"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_store_email" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" bson:"password"`
	Rank      Rank      `json:"rank" gorm:"type:smallint;not null" bson:"rank"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
