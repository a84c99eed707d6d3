package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleAdmin    = "admin"
	RoleRetailer = "retailer"
)

// Identity is the credential record behind the identity-provider boundary.
// The subject identifier handed to the rest of the application is the hex of
// its ObjectID.
type Identity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Password  []byte             `bson:"password"`
	CreatedAt primitive.DateTime `bson:"created_at"`
}

// Admin is a brand account profile, keyed by its subject identifier.
// Companies is non-empty after registration; the first element is the
// admin's company.
type Admin struct {
	ID           string             `bson:"_id"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	ProfileImage *string            `bson:"profile_image"`
	Role         string             `bson:"role"`
	Companies    []Company          `bson:"companies"`
	LoginTokens  []LoginToken       `bson:"login_tokens"`
	CreatedAt    primitive.DateTime `bson:"created_at"`
	UpdatedAt    primitive.DateTime `bson:"updated_at"`
}

type Company struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Retailer is a retailer account profile, keyed by its subject identifier.
type Retailer struct {
	ID           string             `bson:"_id"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	ProfileImage *string            `bson:"profile_image"`
	Role         string             `bson:"role"`
	Stocks       []StockEntry       `bson:"stocks"`
	Devices      []Device           `bson:"devices"`
	LoginTokens  []LoginToken       `bson:"login_tokens"`
	CreatedAt    primitive.DateTime `bson:"created_at"`
	UpdatedAt    primitive.DateTime `bson:"updated_at"`
}

// Device records a push-notification target registered at login.
type Device struct {
	FCMToken  string             `bson:"fcm_token"`
	CreatedAt primitive.DateTime `bson:"created_at"`
}

// LoginToken holds the bcrypt hash of a session token's sha256, so a stolen
// database dump cannot replay sessions and logout revokes server-side.
type LoginToken struct {
	TokenID    string             `bson:"token_id"`
	Token      []byte             `bson:"token"`
	Expiration primitive.DateTime `bson:"expiration"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}
