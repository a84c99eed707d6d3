package database

import (
	"context"
	"time"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db Database) ItemInsert(ctx context.Context, i model.Item) error {
	i.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	i.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	_, err := db.Collection(CollectionItems).InsertOne(ctx, i)
	return errors.Wrapf(err, "error inserting Item: %+v", i)
}

func (db Database) ItemFindOne(ctx context.Context, itemID string) (model.Item, error) {
	var i model.Item
	err := db.Collection(CollectionItems).FindOne(ctx, bson.M{"_id": itemID}).Decode(&i)
	return i, errors.Wrapf(err, "error finding Item with ID: %s", itemID)
}

func (db Database) ItemsFindAll(ctx context.Context) ([]model.Item, error) {
	var is []model.Item
	cur, err := db.Collection(CollectionItems).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Items")
	}
	if err = cur.All(ctx, &is); err != nil {
		return nil, errors.Wrap(err, "error getting all Items from cursor")
	}
	return is, nil
}

func (db Database) ItemsFindByCompany(ctx context.Context, companyName string) ([]model.Item, error) {
	var is []model.Item
	cur, err := db.Collection(CollectionItems).Find(ctx, bson.M{"company_name": companyName})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Items for company: %s", companyName)
	}
	if err = cur.All(ctx, &is); err != nil {
		return nil, errors.Wrapf(err, "error getting Items from cursor for company: %s", companyName)
	}
	return is, nil
}

func (db Database) ItemUpdate(ctx context.Context, i model.Item) error {
	res, err := db.Collection(CollectionItems).UpdateOne(
		ctx,
		bson.M{"_id": i.ID},
		bson.M{"$set": bson.M{
			"product_name":   i.ProductName,
			"description":    i.Description,
			"category":       i.Category,
			"quantity":       i.Quantity,
			"packaging":      i.Packaging,
			"image1":         i.Image1,
			"image2":         i.Image2,
			"image3":         i.Image3,
			"nutrient_score": i.NutrientScore,
			"calories":       i.Calories,
			"healthy_score":  i.HealthyScore,
			"ingredients":    i.Ingredients,
			"updated_at":     primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Item with ID: %s", i.ID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Item not found when updating, ID: %s", i.ID)
	}
	return nil
}

func (db Database) ItemDelete(ctx context.Context, itemID string) error {
	res, err := db.Collection(CollectionItems).DeleteOne(ctx, bson.M{"_id": itemID})
	if err != nil {
		return errors.Wrapf(err, "error deleting Item with ID: %s", itemID)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "Item not found when deleting, ID: %s", itemID)
	}
	return nil
}
