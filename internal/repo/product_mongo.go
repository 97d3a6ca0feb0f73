package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "products"

// mongoProduct is the stored document. The id is generated on insert.
type mongoProduct struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Category  string             `bson:"category"`
	Price     float64            `bson:"price"`
	Quantity  int                `bson:"quantity"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d mongoProduct) toModel() models.Product {
	return models.Product{
		ID:        models.ID(d.ID.Hex()),
		Name:      d.Name,
		Category:  d.Category,
		Price:     d.Price,
		Quantity:  d.Quantity,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoProductRepository stores products as documents of one collection.
type MongoProductRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	database   string
}

func NewMongoProductRepository(client *mongo.Client, database string) *MongoProductRepository {
	return &MongoProductRepository{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
		database:   database,
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	ts := now()
	doc := mongoProduct{
		ID:        primitive.NewObjectID(),
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	// Mongo keeps milliseconds only; return what a later read would see.
	doc.CreatedAt = ts.Truncate(time.Millisecond)
	doc.UpdatedAt = doc.CreatedAt
	return doc.toModel(), nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id models.ID, patch models.ProductPatch) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return models.Product{}, ErrProductNotFound
	}

	set := bson.M{"updatedAt": now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}

	var doc mongoProduct
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id models.ID) error {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil
	}
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// Search matches the name only. The keyword is quoted, so it is matched
// literally anywhere in the name.
func (r *MongoProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	return r.find(ctx, bson.M{
		"name": bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"},
	})
}

func (r *MongoProductRepository) Health(ctx context.Context) HealthStatus {
	return healthStatus("MongoDB", r.database+"."+mongoCollection, r.client.Ping(ctx, nil))
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProduct
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}
