package models

import "time"

// Ingredient is one layer of a drink recipe.
type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Drink is a menu item. The recipe is persisted as a JSON column.
type Drink struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"size:80;uniqueIndex;not null" json:"title"`
	Recipe    []Ingredient `gorm:"serializer:json;type:text;not null" json:"recipe"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

// TableName overrides the table name
func (Drink) TableName() string {
	return "drinks"
}

// ShortIngredient is the public view of an ingredient; the name is withheld.
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// DrinkShort is the public menu representation.
type DrinkShort struct {
	ID     uint              `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// DrinkLong is the detailed representation including ingredient names.
type DrinkLong struct {
	ID     uint         `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

func (d *Drink) Short() DrinkShort {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, in := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Color: in.Color, Parts: in.Parts})
	}
	return DrinkShort{ID: d.ID, Title: d.Title, Recipe: recipe}
}

func (d *Drink) Long() DrinkLong {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return DrinkLong{ID: d.ID, Title: d.Title, Recipe: recipe}
}
