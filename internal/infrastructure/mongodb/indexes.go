package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys: bson.D{{Key: "googleId", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"googleId": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{{Key: "githubId", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"githubId": bson.M{"$exists": true}}),
			},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
