package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PackagingPlastic = "plastic"
	PackagingPaper   = "paper"
)

// Item is a published product. ID is derived from the company name and the
// creation time in milliseconds, so two products created for the same company
// in the same millisecond would collide.
type Item struct {
	ID            string             `bson:"_id" json:"id"`
	ProductName   string             `bson:"product_name" json:"productName"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Quantity      string             `bson:"quantity" json:"quantity"`
	Packaging     string             `bson:"packaging" json:"packaging"`
	Image1        string             `bson:"image1" json:"image1"`
	Image2        string             `bson:"image2" json:"image2"`
	Image3        string             `bson:"image3" json:"image3"`
	CompanyName   string             `bson:"company_name" json:"companyName"`
	NutrientScore string             `bson:"nutrient_score" json:"nutrientScore"`
	Calories      string             `bson:"calories" json:"calories"`
	HealthyScore  string             `bson:"healthy_score" json:"healthyScore"`
	Ingredients   []Ingredient       `bson:"ingredients" json:"ingredients"`
	CreatedAt     primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt     primitive.DateTime `bson:"updated_at" json:"-"`
}

type Ingredient struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
}

func NewItemID(companyName string, t time.Time) string {
	return fmt.Sprintf("%s_%d", companyName, t.UnixMilli())
}
