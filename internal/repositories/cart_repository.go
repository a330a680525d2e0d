package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/minimart-labs/minimart-platform/internal/models"
	"github.com/minimart-labs/minimart-platform/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

// CartRepository persists one cart document per user. Save is a single
// upsert keyed on user_id, atomic per call; serialization of concurrent
// load-modify-save cycles is the service's responsibility.
type CartRepository interface {
	Load(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepo(db *mongo.Database) CartRepository {
	return &cartRepository{collection: db.Collection(cartsCollection)}
}

func (r *cartRepository) Load(ctx context.Context, userID string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var cart models.Cart

	err := r.collection.FindOne(dbCtx, bson.M{"user_id": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	update := bson.M{"$set": bson.M{
		"items":      cart.Items,
		"updated_at": cart.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"user_id":    cart.UserID,
		"created_at": cart.CreatedAt,
	}}

	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(dbCtx, bson.M{"user_id": cart.UserID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}
