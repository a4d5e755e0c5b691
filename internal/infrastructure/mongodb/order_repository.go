package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type OrderRepository struct {
	coll *mongo.Collection
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	uid, err := userOID(o.UserID)
	if err != nil {
		return err
	}
	doc := orderDoc{
		ID:              bson.NewObjectID(),
		UserID:          uid,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate.UTC(),
		Products:        make([]orderItemDoc, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		doc.Products = append(doc.Products, orderItemDoc{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	uid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
