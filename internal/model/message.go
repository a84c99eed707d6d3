package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a notification shown to retailers. read flips to true the first
// time any viewer opens the notification list; it is not tracked per viewer.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyName string             `bson:"company_name" json:"companyName"`
	ProductName string             `bson:"product_name" json:"productName"`
	ProductID   string             `bson:"product_id" json:"productId"`
	Image1      string             `bson:"image1" json:"image1"`
	CreatedAt   string             `bson:"created_at" json:"createdAt"`
	Message     string             `bson:"message" json:"message"`
	IsClickable bool               `bson:"is_clickable" json:"isClickable"`
	Read        bool               `bson:"read" json:"read"`
}

// NewProductMessage builds the notification created alongside a new product.
func NewProductMessage(i Item, now time.Time) Message {
	return Message{
		CompanyName: i.CompanyName,
		ProductName: i.ProductName,
		ProductID:   i.ID,
		Image1:      i.Image1,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Message:     fmt.Sprintf("%s has added a new product: %s", i.CompanyName, i.ProductName),
		IsClickable: true,
		Read:        false,
	}
}

// UpdatedProductMessage builds the notification created when an existing
// product is edited.
func UpdatedProductMessage(i Item, now time.Time) Message {
	return Message{
		CompanyName: i.CompanyName,
		ProductName: i.ProductName,
		ProductID:   i.ID,
		Image1:      i.Image1,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Message:     fmt.Sprintf("%s has updated a product: %s", i.CompanyName, i.ProductName),
		IsClickable: true,
		Read:        false,
	}
}
