package handlers

import (
	"strconv"

	"github.com/Vishwajit-29/AgroRent/internal/models"
	"github.com/Vishwajit-29/AgroRent/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EquipmentInput struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"required"`
	PricePerHour *float64 `json:"pricePerHour"`
	PricePerDay  *float64 `json:"pricePerDay"`
	PricePerWeek *float64 `json:"pricePerWeek"`
	Latitude     *float64 `json:"latitude" binding:"required"`
	Longitude    *float64 `json:"longitude" binding:"required"`
	Address      string   `json:"address"`
	Village      string   `json:"village"`
	District     string   `json:"district"`
	State        string   `json:"state"`
	Pincode      string   `json:"pincode"`
}

func (in *EquipmentInput) validate() string {
	if !models.IsValidCategory(models.EquipmentCategory(in.Category)) {
		return "Unknown equipment category"
	}
	if in.PricePerHour == nil && in.PricePerDay == nil && in.PricePerWeek == nil {
		return "At least one rate (per hour, day or week) is required"
	}
	for _, rate := range []*float64{in.PricePerHour, in.PricePerDay, in.PricePerWeek} {
		if rate != nil && *rate < 0 {
			return "Rates must not be negative"
		}
	}
	return ""
}

func (in *EquipmentInput) apply(equipment *models.Equipment) {
	equipment.Name = in.Name
	equipment.Description = in.Description
	equipment.Category = models.EquipmentCategory(in.Category)
	equipment.PricePerHour = in.PricePerHour
	equipment.PricePerDay = in.PricePerDay
	equipment.PricePerWeek = in.PricePerWeek
	equipment.Latitude = *in.Latitude
	equipment.Longitude = *in.Longitude
	equipment.Address = in.Address
	equipment.Village = in.Village
	equipment.District = in.District
	equipment.State = in.State
	equipment.Pincode = in.Pincode
}

// CreateEquipment handles a new equipment listing by its owner
func CreateEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input EquipmentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if msg := input.validate(); msg != "" {
			c.JSON(400, gin.H{"error": msg})
			return
		}

		equipment := models.Equipment{
			OwnerID:   userId,
			Available: true,
			Images:    []string{},
		}
		input.apply(&equipment)

		if err := db.Create(&equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create equipment"})
			return
		}

		c.JSON(201, equipment)
	}
}

// UpdateEquipment lets the owner edit a listing
func UpdateEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		equipment, ok := ownedEquipment(c, db, userId)
		if !ok {
			return
		}

		var input EquipmentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if msg := input.validate(); msg != "" {
			c.JSON(400, gin.H{"error": msg})
			return
		}

		input.apply(equipment)
		if err := db.Save(equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update equipment"})
			return
		}

		services.InvalidateEquipment(c.Request.Context(), equipment.ID)
		c.JSON(200, equipment)
	}
}

// DeleteEquipment removes a listing. Deletion is forbidden while any pending,
// approved or active booking still references the equipment.
func DeleteEquipment(db *gorm.DB, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		equipment, ok := ownedEquipment(c, db, userId)
		if !ok {
			return
		}

		live, err := bookings.CountLiveForEquipment(c.Request.Context(), equipment.ID)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check bookings"})
			return
		}
		if live > 0 {
			c.JSON(409, gin.H{"error": services.ErrEquipmentInUse.Error()})
			return
		}

		if err := db.Delete(equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete equipment"})
			return
		}

		for _, image := range equipment.Images {
			services.DeleteImage(image)
		}
		services.InvalidateEquipment(c.Request.Context(), equipment.ID)
		c.JSON(200, gin.H{"message": "Equipment deleted"})
	}
}

// ToggleAvailability flips the owner-controlled available flag
func ToggleAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		equipment, ok := ownedEquipment(c, db, userId)
		if !ok {
			return
		}

		equipment.Available = !equipment.Available
		if err := db.Save(equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}

		services.InvalidateEquipment(c.Request.Context(), equipment.ID)
		c.JSON(200, equipment)
	}
}

// GetMyEquipment lists the authenticated owner's equipment
func GetMyEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var equipment []models.Equipment
		if err := db.Where("owner_id = ?", userId).Order("id ASC").Find(&equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch equipment"})
			return
		}

		c.JSON(200, equipment)
	}
}

// GetEquipment is the public equipment detail read. Unavailable equipment is
// still viewable, it just cannot be booked.
func GetEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid equipment id"})
			return
		}

		if cached, err := services.GetCachedEquipment(c.Request.Context(), uint(id)); err == nil && cached != nil {
			c.JSON(200, cached)
			return
		}

		var equipment models.Equipment
		if err := db.Preload("Owner").First(&equipment, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Equipment not found"})
			return
		}

		services.CacheEquipment(c.Request.Context(), &equipment)
		c.JSON(200, equipment)
	}
}

// UploadEquipmentImages stores uploaded images and appends their URLs to the
// listing
func UploadEquipmentImages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		equipment, ok := ownedEquipment(c, db, userId)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid multipart form"})
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(400, gin.H{"error": "No images provided"})
			return
		}

		for _, file := range files {
			path, err := services.UploadImage(file, "equipment")
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to upload image"})
				return
			}
			equipment.Images = append(equipment.Images, services.GetImageURL(path))
		}

		if err := db.Save(equipment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save images"})
			return
		}

		services.InvalidateEquipment(c.Request.Context(), equipment.ID)
		c.JSON(200, equipment)
	}
}

// SearchEquipment runs the geo-proximity ranked search
func SearchEquipment(search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Latitude  *float64 `json:"latitude" binding:"required"`
			Longitude *float64 `json:"longitude" binding:"required"`
			RadiusKm  float64  `json:"radiusKm"`
			Category  string   `json:"category"`
			MinPrice  *float64 `json:"minPrice"`
			MaxPrice  *float64 `json:"maxPrice"`
			SortBy    string   `json:"sortBy" binding:"omitempty,oneof=distance price rating"`
			SortOrder string   `json:"sortOrder" binding:"omitempty,oneof=asc desc"`
			Limit     int      `json:"limit"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Category != "" && !models.IsValidCategory(models.EquipmentCategory(input.Category)) {
			c.JSON(400, gin.H{"error": "Unknown equipment category"})
			return
		}

		results, err := search.Search(c.Request.Context(), services.SearchQuery{
			Latitude:  *input.Latitude,
			Longitude: *input.Longitude,
			RadiusKm:  input.RadiusKm,
			Category:  models.EquipmentCategory(input.Category),
			MinPrice:  input.MinPrice,
			MaxPrice:  input.MaxPrice,
			SortBy:    input.SortBy,
			SortOrder: input.SortOrder,
			Limit:     input.Limit,
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Search failed"})
			return
		}

		c.JSON(200, results)
	}
}

// GetNearbyEquipment lists available equipment around a point, closest first
func GetNearbyEquipment(search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
		if err1 != nil || err2 != nil {
			c.JSON(400, gin.H{"error": "lat and lng query parameters are required"})
			return
		}
		radius, err := strconv.ParseFloat(c.DefaultQuery("radiusKm", "50"), 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid radiusKm"})
			return
		}

		results, err := search.Nearby(c.Request.Context(), lat, lng, radius)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch nearby equipment"})
			return
		}

		c.JSON(200, results)
	}
}

// GetCategories returns the closed set of equipment categories
func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"categories": models.EquipmentCategories})
	}
}

// GetEquipmentByCategory lists available equipment of one category
func GetEquipmentByCategory(search *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := models.EquipmentCategory(c.Param("category"))
		if !models.IsValidCategory(category) {
			c.JSON(400, gin.H{"error": "Unknown equipment category"})
			return
		}

		equipment, err := search.ByCategory(c.Request.Context(), category)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch equipment"})
			return
		}

		c.JSON(200, equipment)
	}
}

// ownedEquipment loads the equipment from the :id route parameter and checks
// the acting user owns it. It writes the error response itself on failure.
func ownedEquipment(c *gin.Context, db *gorm.DB, userId uint) (*models.Equipment, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid equipment id"})
		return nil, false
	}

	var equipment models.Equipment
	if err := db.First(&equipment, uint(id)).Error; err != nil {
		c.JSON(404, gin.H{"error": "Equipment not found"})
		return nil, false
	}

	if equipment.OwnerID != userId {
		c.JSON(403, gin.H{"error": "You can only manage your own equipment"})
		return nil, false
	}

	return &equipment, true
}
