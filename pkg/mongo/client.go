package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/futamarket/market-backend/pkg/config"
	"github.com/futamarket/market-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SectionsCollection = "sections"
	ProductsCollection = "products"
)

// Client wraps the shared MongoDB connection and target database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects, verifies the server is reachable and ensures collection indexes.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	raw, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := raw.Ping(connectCtx, nil); err != nil {
		_ = raw.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	c := &Client{client: raw, db: raw.Database(cfg.Database)}
	if err := c.EnsureIndexes(connectCtx); err != nil {
		_ = raw.Disconnect(context.Background())
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database", cfg.Database), "mongo connection established")
	}
	return c, nil
}

// EnsureIndexes creates the newest-first listing indexes.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	for _, name := range []string{SectionsCollection, ProductsCollection} {
		_, err := c.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("mongo index %s: %w", name, err)
		}
	}
	return nil
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping verifies the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("mongo client not initialized")
	}
	return c.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
