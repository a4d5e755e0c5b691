package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type ProductRepository struct {
	coll *mongo.Collection
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

// refFilter matches a ref against both the store id and the catalog id.
func refFilter(refs ...string) bson.M {
	var oids []bson.ObjectID
	for _, ref := range refs {
		if oid, err := bson.ObjectIDFromHex(ref); err == nil {
			oids = append(oids, oid)
		}
	}
	or := bson.A{bson.M{"productId": bson.M{"$in": refs}}}
	if len(oids) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": oids}})
	}
	return bson.M{"$or": or}
}

func (r *ProductRepository) FindByRef(ctx context.Context, ref string) (*entity.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, refFilter(ref)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrProductNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ProductRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, refFilter(refs...))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		p := d.toEntity()
		for _, ref := range refs {
			if p.Matches(ref) {
				out[ref] = p
			}
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "productId", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *entity.Product) error {
	set := bson.M{
		"title":       p.Title,
		"price":       p.Price,
		"category":    p.Category,
		"description": p.Description,
		"image":       p.Image,
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"productId": p.ExternalID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"productId": p.ExternalID}},
		opts,
	).Decode(&doc)
	if err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	return nil
}
