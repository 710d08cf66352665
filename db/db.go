package db

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client

	UserCollection    *mongo.Collection
	ProductCollection *mongo.Collection
	CouponCollection  *mongo.Collection
	OrderCollection   *mongo.Collection
	CounterCollection *mongo.Collection
)

// Init connects to MongoDB and binds the collections. Called once from main;
// pair with Close on shutdown.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "albaceo"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	Client = client
	database := client.Database(dbName)
	UserCollection = database.Collection("users")
	ProductCollection = database.Collection("products")
	CouponCollection = database.Collection("coupons")
	OrderCollection = database.Collection("orders")
	CounterCollection = database.Collection("counters")

	return nil
}

func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

// EnsureIndexes creates the uniqueness constraints the checkout flow relies
// on. The unique stripeSessionId index is the idempotency guard for webhook
// replays; it must exist before the server accepts traffic.
func EnsureIndexes(ctx context.Context) error {
	_, err := OrderCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"stripeSessionId": 1},
		Options: options.Index().SetUnique(true).SetName("unique_stripe_session"),
	})
	if err != nil {
		return fmt.Errorf("orders index: %w", err)
	}

	_, err = CouponCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"code": 1},
		Options: options.Index().SetUnique(true).SetName("unique_coupon_code"),
	})
	if err != nil {
		return fmt.Errorf("coupons index: %w", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	return nil
}

// IsDuplicateKeyError reports whether err is a Mongo unique-index violation
// (code 11000). Callers treat it as "already exists", not as a failure.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
