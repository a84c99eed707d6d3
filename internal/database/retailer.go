package database

import (
	"context"
	"time"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db Database) RetailerInsert(ctx context.Context, r model.Retailer) error {
	r.Role = model.RoleRetailer
	r.Stocks = []model.StockEntry{}
	r.Devices = []model.Device{}
	r.LoginTokens = []model.LoginToken{}
	r.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	r.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	_, err := db.Collection(CollectionRetailers).InsertOne(ctx, r)
	return errors.Wrapf(err, "error inserting Retailer with ID: %s", r.ID)
}

func (db Database) RetailerFindByID(ctx context.Context, id string) (model.Retailer, error) {
	var r model.Retailer
	err := db.Collection(CollectionRetailers).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	return r, errors.Wrapf(err, "error finding Retailer with ID: %s", id)
}

func (db Database) RetailersFindAll(ctx context.Context) ([]model.Retailer, error) {
	var rs []model.Retailer
	cur, err := db.Collection(CollectionRetailers).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Retailers")
	}
	if err = cur.All(ctx, &rs); err != nil {
		return nil, errors.Wrap(err, "error getting all Retailers from cursor")
	}
	return rs, nil
}

func (db Database) RetailerProfileUpdate(ctx context.Context, id string, name string, profileImage *string) error {
	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":          name,
			"profile_image": profileImage,
			"updated_at":    primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating profile of Retailer with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not found when updating profile, ID: %s", id)
	}
	return nil
}

func (db Database) RetailerAddLoginToken(ctx context.Context, id string, lt model.LoginToken) error {
	lt.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionRetailers).UpdateOne(
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
		return errors.Wrapf(err, "error adding login token to Retailer with ID: %s", id)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not modified when adding login token, ID: %s", id)
	}
	return nil
}

func (db Database) RetailerRemoveLoginToken(ctx context.Context, id string, tokenID string) error {
	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"login_tokens": bson.M{"token_id": tokenID}}},
	)
	if err != nil {
		return errors.Wrapf(err, "error removing login token from Retailer with ID: %s, token ID: %s", id, tokenID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not modified when removing login token, ID: %s, token ID: %s", id, tokenID)
	}
	return nil
}

func (db Database) RetailerAddDevice(ctx context.Context, id string, d model.Device) error {
	d.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id, "devices.fcm_token": bson.M{"$ne": d.FCMToken}},
		bson.M{"$push": bson.M{"devices": d}},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding Device to Retailer with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		// Token already registered, nothing to do.
		return nil
	}
	return nil
}

// RetailerStockAdd appends unconditionally: repeated adds for the same
// product produce duplicate entries, they are not merged.
func (db Database) RetailerStockAdd(ctx context.Context, id string, e model.StockEntry) error {
	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"stocks": e}},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding stock entry to Retailer with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not found when adding stock entry, ID: %s", id)
	}
	return nil
}

// RetailerStockRemove pulls every entry structurally equal to e. Removing an
// entry that is not present matches the document but modifies nothing, which
// is not an error.
func (db Database) RetailerStockRemove(ctx context.Context, id string, e model.StockEntry) error {
	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"stocks": e}},
	)
	if err != nil {
		return errors.Wrapf(err, "error removing stock entry from Retailer with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not found when removing stock entry, ID: %s", id)
	}
	return nil
}

// RetailerStocksSet rewrites the whole stocks array. UpdateQuantity goes
// through this, so concurrent writers race at array granularity and the last
// write wins.
func (db Database) RetailerStocksSet(ctx context.Context, id string, stocks []model.StockEntry) error {
	res, err := db.Collection(CollectionRetailers).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"stocks": stocks}},
	)
	if err != nil {
		return errors.Wrapf(err, "error setting stocks of Retailer with ID: %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Retailer not found when setting stocks, ID: %s", id)
	}
	return nil
}
