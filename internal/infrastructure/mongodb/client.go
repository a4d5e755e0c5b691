// Package mongodb stores users, products and orders in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/storefront-account/config"
)

var (
	ErrFailedToConnect    = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed  = errors.New("mongo healthcheck failed")
	errInvalidObjectIDHex = errors.New("invalid object id")
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// Connect dials MongoDB and pings it, retrying cfg.MongoRetryAttempts times.
func Connect(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*mongo.Client, error) {
	attempts := cfg.MongoRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := range attempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.MongoURL).
				SetConnectTimeout(cfg.MongoConnectTimeout).
				SetMaxPoolSize(cfg.MongoMaxPoolSize).
				SetMinPoolSize(cfg.MongoMinPoolSize).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		lastErr = err
		if log != nil {
			log.WithError(err).WithField("attempt", i+1).Warn("mongo connect failed")
		}
		if i+1 < attempts {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnect, ctx.Err())
			case <-time.After(cfg.MongoRetryInterval):
			}
		}
	}
	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
