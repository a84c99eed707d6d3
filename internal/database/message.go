package database

import (
	"context"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db Database) MessageInsert(ctx context.Context, m model.Message) (id string, err error) {
	r, err := db.Collection(CollectionMessages).InsertOne(ctx, m)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting Message for product ID: %s", m.ProductID)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) MessagesFindAll(ctx context.Context) ([]model.Message, error) {
	var ms []model.Message
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionMessages).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Messages")
	}
	if err = cur.All(ctx, &ms); err != nil {
		return nil, errors.Wrap(err, "error getting all Messages from cursor")
	}
	return ms, nil
}

// MessagesMarkAllRead flips every unread message to read. The read flag is
// global, not per viewer: the first viewer marks it for everyone.
func (db Database) MessagesMarkAllRead(ctx context.Context) (int64, error) {
	res, err := db.Collection(CollectionMessages).UpdateMany(
		ctx,
		bson.M{"read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "error marking all Messages read")
	}
	return res.ModifiedCount, nil
}
