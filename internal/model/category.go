package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Category belongs to one store and owns its products outright.
type Category struct {
	ID          string      `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	StoreID     string      `json:"store_id" gorm:"type:uuid;not null;uniqueIndex:idx_categories_store_name" bson:"store_id"`
	Name        string      `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_store_name" bson:"name"`
	Description string      `json:"description" gorm:"type:text" bson:"description"`
	Products    ProductList `json:"products" gorm:"type:jsonb;not null;default:'[]'" bson:"products"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// ProductByID returns the embedded product with the given id
func (c *Category) ProductByID(id string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// ProductByName returns the embedded product with the given name
func (c *Category) ProductByName(name string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].Name == name {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// ProductList is the ordered embedded product collection, stored as a JSON document column.
type ProductList []Product

// Value implements driver.Valuer
func (l ProductList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *ProductList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = ProductList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ProductList", src)
	}

	list := ProductList{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return err
	}
	*l = list
	return nil
}
