package database

import (
	"context"
	"time"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db Database) IdentityInsert(ctx context.Context, i model.Identity) (id string, err error) {
	i.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionIdentities).InsertOne(ctx, i)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting Identity with email: %s", i.Email)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) IdentityFindByEmail(ctx context.Context, email string) (model.Identity, error) {
	var i model.Identity
	err := db.Collection(CollectionIdentities).FindOne(ctx, bson.M{"email": email}).Decode(&i)
	return i, errors.Wrapf(err, "error finding Identity with email: %s", email)
}
