package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// transactionDocument is the stored shape of a transaction. Amounts are
// written as Decimal128; documents written by older clients may hold a
// double or an integer instead, which decodeAmount also accepts. Those
// clients also keyed documents by ObjectID, kept their creation time in
// milliseconds under "id" and wrote no date.
type transactionDocument struct {
	ID          interface{}   `bson:"_id"`
	LegacyID    interface{}   `bson:"id,omitempty"`
	Amount      bson.RawValue `bson:"amount"`
	Description string        `bson:"description"`
	Type        string        `bson:"type"`
	Category    string        `bson:"category"`
	Date        time.Time     `bson:"date,omitempty"`
	CreatedAt   time.Time     `bson:"created_at,omitempty"`
	UpdatedAt   time.Time     `bson:"updated_at,omitempty"`
}

// mongoStore keeps transactions in a MongoDB collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a Store backed by coll.
func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

// EnsureIndexes creates the index backing the newest-first listing.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *mongoStore) Add(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = uuid.New()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	doc, err := toDocument(t)
	if err != nil {
		return nil, err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (s *mongoStore) List(ctx context.Context) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classify(err)
	}

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}

	transactions := make([]models.Transaction, 0, len(docs))
	for i := range docs {
		t, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	// Undated documents sort last on the server; place them by derived date.
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp().After(transactions[j].Timestamp())
	})
	return transactions, nil
}

func (s *mongoStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var doc transactionDocument
	if err := s.coll.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		return nil, notFoundOr(err)
	}
	return fromDocument(&doc)
}

func (s *mongoStore) Update(ctx context.Context, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(current)
	if err := current.Validate(); err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	if patch.Amount != nil {
		amount, err := primitive.ParseDecimal128(patch.Amount.String())
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is out of range")
		}
		set["amount"] = amount
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc transactionDocument
	if err := s.coll.FindOneAndUpdate(ctx, idFilter(id), bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, notFoundOr(err)
	}
	return fromDocument(&doc)
}

func (s *mongoStore) Delete(ctx context.Context, id string) (*models.Transaction, error) {
	var doc transactionDocument
	if err := s.coll.FindOneAndDelete(ctx, idFilter(id)).Decode(&doc); err != nil {
		return nil, notFoundOr(err)
	}
	return fromDocument(&doc)
}

func (s *mongoStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// idFilter matches a document by the identifier the API exposes. Hex
// ObjectIDs address documents written by older clients.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func notFoundOr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrTransactionNotFound
	}
	return classify(err)
}

func toDocument(t *models.Transaction) (*transactionDocument, error) {
	amount, err := primitive.ParseDecimal128(t.Amount.String())
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is out of range")
	}
	typ, data, err := bson.MarshalValue(amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transactionDocument{
		ID:          t.ID,
		Amount:      bson.RawValue{Type: typ, Value: data},
		Description: t.Description,
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func fromDocument(doc *transactionDocument) (*models.Transaction, error) {
	id := documentID(doc.ID)
	amount, err := decodeAmount(doc.Amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("document %s: %w", id, err))
	}
	date := doc.Date
	if date.IsZero() {
		date = legacyDate(doc)
	}
	return &models.Transaction{
		Base: models.Base{
			ID:        id,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		},
		Amount:      amount,
		Description: doc.Description,
		Type:        models.TransactionType(doc.Type),
		Category:    doc.Category,
		Date:        date,
	}, nil
}

func documentID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// legacyDate recovers the date of a document written without one, from its
// millisecond "id" field or else from its ObjectID. It returns the zero
// time when neither is present.
func legacyDate(doc *transactionDocument) time.Time {
	switch ms := doc.LegacyID.(type) {
	case int64:
		return time.UnixMilli(ms).UTC()
	case int32:
		return time.UnixMilli(int64(ms)).UTC()
	case float64:
		return time.UnixMilli(int64(ms)).UTC()
	}
	if oid, ok := doc.ID.(primitive.ObjectID); ok {
		return oid.Timestamp().UTC()
	}
	return time.Time{}
}

func decodeAmount(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %s", v.Type)
	}
}
