package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type UserRepository struct {
	coll *mongo.Collection
	Now  func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), Now: time.Now}
}

func userOID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, entity.ErrUserNotFound
	}
	return oid, nil
}

func (r *UserRepository) now() time.Time { return r.Now().UTC() }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = entity.NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if err := u.Validate(true); err != nil {
		return err
	}
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	u.ID = ""
	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrEmailTaken
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, secrets bool) (*entity.User, error) {
	opts := options.FindOne()
	if !secrets {
		opts.SetProjection(secretFields)
	}
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := userOID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, false)
}

func (r *UserRepository) GetByIDWithSecrets(ctx context.Context, id string) (*entity.User, error) {
	oid, err := userOID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, true)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)}, false)
}

func (r *UserRepository) GetByEmailWithSecrets(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)}, true)
}

func (r *UserRepository) GetByProvider(ctx context.Context, provider entity.AuthType, externalID string) (*entity.User, error) {
	if externalID == "" {
		return nil, entity.ErrUserNotFound
	}
	var field string
	switch provider {
	case entity.AuthGoogle:
		field = "googleId"
	case entity.AuthGitHub:
		field = "githubId"
	default:
		return nil, entity.ErrInvalidAuthType
	}
	return r.findOne(ctx, bson.M{field: externalID, "authType": string(provider)}, false)
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	opts := options.Find().SetProjection(secretFields).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// Save replaces the stored document. Concurrent sub-document updates made between the
// caller's read and this write are lost, so request paths use the targeted setters.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	u.Email = entity.NormalizeEmail(u.Email)
	if err := u.Validate(true); err != nil {
		return err
	}
	u.UpdatedAt = r.now()
	doc, err := toUserDoc(u)
	if err != nil {
		return entity.ErrUserNotFound
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrEmailTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// set applies fields to one user and returns the sanitized result.
func (r *UserRepository) set(ctx context.Context, userID string, fields bson.M) (*entity.User, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = r.now()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(secretFields)
	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, name, phone *string) (*entity.User, error) {
	fields := bson.M{}
	if name != nil {
		fields["name"] = *name
	}
	if phone != nil {
		fields["phone"] = *phone
	}
	return r.set(ctx, userID, fields)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	oid, err := userOID(userID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "authType": string(entity.AuthLocal)}
	update := bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetAvatar(ctx context.Context, userID string, a entity.Avatar) (*entity.User, error) {
	return r.set(ctx, userID, bson.M{"avatar": avatarDoc{URL: a.URL, PublicID: a.ExternalID}})
}

func (r *UserRepository) SetCode(ctx context.Context, userID string, purpose entity.CodePurpose, code entity.OneTimeCode) error {
	oid, err := userOID(userID)
	if err != nil {
		return err
	}
	codeField, expiresField := codeFields(purpose)
	update := bson.M{"$set": bson.M{
		codeField:    code.Code,
		expiresField: code.ExpiresAt.UTC(),
		"updatedAt":  r.now(),
	}}
	if !code.Pending() {
		update = bson.M{
			"$unset": bson.M{codeField: "", expiresField: ""},
			"$set":   bson.M{"updatedAt": r.now()},
		}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearCode(ctx context.Context, userID string, purpose entity.CodePurpose) error {
	return r.SetCode(ctx, userID, purpose, entity.OneTimeCode{})
}

// consume applies set and clears the code in one conditional update.
func (r *UserRepository) consume(ctx context.Context, userID string, purpose entity.CodePurpose, code string, now time.Time, set bson.M) (bool, error) {
	oid, err := userOID(userID)
	if err != nil {
		return false, err
	}
	if code == "" {
		return false, nil
	}
	codeField, expiresField := codeFields(purpose)
	filter := bson.M{
		"_id":        oid,
		codeField:    code,
		expiresField: bson.M{"$gte": now.UTC()},
	}
	set["updatedAt"] = r.now()
	update := bson.M{
		"$set":   set,
		"$unset": bson.M{codeField: "", expiresField: ""},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, userID, code string, now time.Time) (bool, error) {
	return r.consume(ctx, userID, entity.PurposeEmailVerification, code, now, bson.M{"isVerified": true})
}

func (r *UserRepository) CommitPasswordReset(ctx context.Context, userID, code string, now time.Time, passwordHash string) (bool, error) {
	return r.consume(ctx, userID, entity.PurposePasswordReset, code, now, bson.M{"password": passwordHash})
}

// unsetDefault is the $map expression that copies addresses with isDefault forced to false.
func unsetDefault() bson.M {
	return bson.M{"$map": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$addresses", bson.A{}}},
		"as":    "a",
		"in":    bson.M{"$mergeObjects": bson.A{"$$a", bson.M{"isDefault": false}}},
	}}
}

func (r *UserRepository) addresses(ctx context.Context, filter bson.M, update any, notFound error) ([]entity.Address, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"addresses": 1})
	var doc struct {
		Addresses []addressDoc `bson:"addresses"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return fromAddressDocs(doc.Addresses), nil
}

func (r *UserRepository) AddAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	doc := toAddressDoc(a)
	if !a.IsDefault {
		update := bson.M{
			"$push": bson.M{"addresses": doc},
			"$set":  bson.M{"updatedAt": r.now()},
		}
		return r.addresses(ctx, bson.M{"_id": oid}, update, entity.ErrUserNotFound)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"addresses": bson.M{"$concatArrays": bson.A{unsetDefault(), bson.A{bson.M{"$literal": doc}}}},
			"updatedAt": r.now(),
		}}},
	}
	return r.addresses(ctx, bson.M{"_id": oid}, pipeline, entity.ErrUserNotFound)
}

func (r *UserRepository) UpdateAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	aid, err := bson.ObjectIDFromHex(a.ID)
	if err != nil {
		return nil, entity.ErrAddressNotFound
	}
	doc := toAddressDoc(a)
	var others any = "$$a"
	if a.IsDefault {
		others = bson.M{"$mergeObjects": bson.A{"$$a", bson.M{"isDefault": false}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"addresses": bson.M{"$map": bson.M{
				"input": "$addresses",
				"as":    "a",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$a._id", aid}},
					bson.M{"$literal": doc},
					others,
				}},
			}},
			"updatedAt": r.now(),
		}}},
	}
	return r.addresses(ctx, bson.M{"_id": oid, "addresses._id": aid}, pipeline, entity.ErrAddressNotFound)
}

func (r *UserRepository) DeleteAddress(ctx context.Context, userID, addressID string) ([]entity.Address, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	aid, err := bson.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, entity.ErrAddressNotFound
	}
	update := bson.M{
		"$pull": bson.M{"addresses": bson.M{"_id": aid}},
		"$set":  bson.M{"updatedAt": r.now()},
	}
	return r.addresses(ctx, bson.M{"_id": oid, "addresses._id": aid}, update, entity.ErrAddressNotFound)
}

func (r *UserRepository) wishlist(ctx context.Context, filter bson.M, update any) ([]entity.WishlistEntry, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"wishlist": 1})
	var doc struct {
		Wishlist []wishDoc `bson:"wishlist"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return fromWishDocs(doc.Wishlist), nil
}

func (r *UserRepository) AddToWishlist(ctx context.Context, userID string, e entity.WishlistEntry) ([]entity.WishlistEntry, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = r.now()
	}
	filter := bson.M{"_id": oid, "wishlist.productId": bson.M{"$ne": e.ProductID}}
	update := bson.M{
		"$push": bson.M{"wishlist": toWishDoc(e)},
		"$set":  bson.M{"updatedAt": r.now()},
	}
	list, err := r.wishlist(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the product is already listed or the user is gone.
		u, gerr := r.GetByID(ctx, userID)
		if gerr != nil {
			return nil, gerr
		}
		return u.Wishlist, nil
	}
	return list, err
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, userID, productRef string) ([]entity.WishlistEntry, error) {
	oid, err := userOID(userID)
	if err != nil {
		return nil, err
	}
	match := bson.M{"$or": bson.A{bson.M{"productId": productRef}, bson.M{"catalogId": productRef}}}
	filter := bson.M{"_id": oid, "wishlist": bson.M{"$elemMatch": match}}
	update := bson.M{
		"$pull": bson.M{"wishlist": match},
		"$set":  bson.M{"updatedAt": r.now()},
	}
	list, err := r.wishlist(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrNotInWishlist
	}
	return list, err
}
