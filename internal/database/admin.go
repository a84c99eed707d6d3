package database

import (
	"context"
	"time"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db Database) AdminInsert(ctx context.Context, a model.Admin) error {
	a.Role = model.RoleAdmin
	a.LoginTokens = []model.LoginToken{}
	a.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	a.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	_, err := db.Collection(CollectionAdmins).InsertOne(ctx, a)
	return errors.Wrapf(err, "error inserting Admin with ID: %s", a.ID)
}

func (db Database) AdminFindByID(ctx context.Context, id string) (model.Admin, error) {
	var a model.Admin
	err := db.Collection(CollectionAdmins).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, errors.Wrapf(err, "error finding Admin with ID: %s", id)
}

func (db Database) AdminProfileUpdate(ctx context.Context, id string, name string, profileImage *string) error {
	res, err := db.Collection(CollectionAdmins).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":          name,
			"profile_image": profileImage,
			"updated_at":    primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile of Admin with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Admin not found when updating profile, ID: %s", id)
	}
	return nil
}

func (db Database) AdminAddLoginToken(ctx context.Context, id string, lt model.LoginToken) error {
	lt.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionAdmins).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{
			"login_tokens": bson.M{
				"$each":     []model.LoginToken{lt},
				"$position": 0,
				"$slice":    8,
			},
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding login token to Admin with ID: %s", id)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Admin not modified when adding login token, ID: %s", id)
	}
	return nil
}

func (db Database) AdminRemoveLoginToken(ctx context.Context, id string, tokenID string) error {
	res, err := db.Collection(CollectionAdmins).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"login_tokens": bson.M{"token_id": tokenID}}},
	)
	if err != nil {
		return errors.Wrapf(err, "error removing login token from Admin with ID: %s, token ID: %s", id, tokenID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Admin not modified when removing login token, ID: %s, token ID: %s", id, tokenID)
	}
	return nil
}
