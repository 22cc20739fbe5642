package models

import (
	"gorm.io/gorm"
)

type EquipmentCategory string

const (
	CategoryTractor    EquipmentCategory = "tractor"
	CategoryHarvester  EquipmentCategory = "harvester"
	CategoryTiller     EquipmentCategory = "tiller"
	CategoryCultivator EquipmentCategory = "cultivator"
	CategorySeeder     EquipmentCategory = "seeder"
	CategorySprayer    EquipmentCategory = "sprayer"
	CategoryPump       EquipmentCategory = "pump"
	CategoryTrailer    EquipmentCategory = "trailer"
	CategoryThresher   EquipmentCategory = "thresher"
	CategoryPlough     EquipmentCategory = "plough"
	CategoryRotavator  EquipmentCategory = "rotavator"
	CategoryOther      EquipmentCategory = "other"
)

// EquipmentCategories lists every valid category, used for request validation.
var EquipmentCategories = []EquipmentCategory{
	CategoryTractor, CategoryHarvester, CategoryTiller, CategoryCultivator,
	CategorySeeder, CategorySprayer, CategoryPump, CategoryTrailer,
	CategoryThresher, CategoryPlough, CategoryRotavator, CategoryOther,
}

func IsValidCategory(c EquipmentCategory) bool {
	for _, v := range EquipmentCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Equipment struct {
	gorm.Model
	OwnerID     uint              `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Owner       *User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string            `json:"name" gorm:"column:name;not null"`
	Description string            `json:"description" gorm:"column:description"`
	Category    EquipmentCategory `json:"category" gorm:"column:category;not null;index"`

	// Rate table: at least one of the three must be set
	PricePerHour *float64 `json:"pricePerHour,omitempty" gorm:"column:price_per_hour"`
	PricePerDay  *float64 `json:"pricePerDay,omitempty" gorm:"column:price_per_day"`
	PricePerWeek *float64 `json:"pricePerWeek,omitempty" gorm:"column:price_per_week"`

	Latitude  float64 `json:"latitude" gorm:"column:latitude;not null"`
	Longitude float64 `json:"longitude" gorm:"column:longitude;not null"`
	Address   string  `json:"address" gorm:"column:address"`
	Village   string  `json:"village" gorm:"column:village"`
	District  string  `json:"district" gorm:"column:district"`
	State     string  `json:"state" gorm:"column:state"`
	Pincode   string  `json:"pincode" gorm:"column:pincode"`

	// No default tag: gorm's create path skips zero-valued fields that carry
	// one, which would silently flip equipment inserted as unavailable.
	Available bool     `json:"available" gorm:"column:available;not null"`
	Images    []string `json:"images" gorm:"column:images;serializer:json"`

	Rating       float64 `json:"rating" gorm:"column:rating;default:0"`
	TotalRatings int     `json:"totalRatings" gorm:"column:total_ratings;default:0"`
	TimesRented  int     `json:"timesRented" gorm:"column:times_rented;default:0"`
}

// TableName specifies the table name
func (Equipment) TableName() string {
	return "equipment"
}

// HasRate reports whether the rate table has at least one entry.
func (e *Equipment) HasRate() bool {
	return e.PricePerHour != nil || e.PricePerDay != nil || e.PricePerWeek != nil
}

// DisplayPrice is the price shown in listings and used for price filtering
// and sorting: the daily rate when present, otherwise hourly, otherwise weekly.
func (e *Equipment) DisplayPrice() float64 {
	switch {
	case e.PricePerDay != nil:
		return *e.PricePerDay
	case e.PricePerHour != nil:
		return *e.PricePerHour
	case e.PricePerWeek != nil:
		return *e.PricePerWeek
	}
	return 0
}
