// Package mongo is a MongoDB-backed store.Store.
//
// Customers and transactions live in their own collections. Numeric storage
// IDs come from a counters collection so the API exposes the same integer
// ids as the SQL backend.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rewards/internal/core"
)

const (
	customersCollection    = "customers"
	transactionsCollection = "transactions"
	countersCollection     = "counters"
)

type customerDoc struct {
	ID         int64  `bson:"_id"`
	CustomerID string `bson:"customer_id"`
	Name       string `bson:"name"`
}

type transactionDoc struct {
	ID         int64                `bson:"_id"`
	CustomerID string               `bson:"customer_id"`
	Amount     primitive.Decimal128 `bson:"amount"`
	Date       string               `bson:"transaction_date"` // YYYY-MM-DD, sorts lexically
}

type Store struct {
	client       *mongo.Client
	customers    *mongo.Collection
	transactions *mongo.Collection
	counters     *mongo.Collection
}

// Open connects to uri, pings the server and ensures the indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.
		Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:       client,
		customers:    db.Collection(customersCollection),
		transactions: db.Collection(transactionsCollection),
		counters:     db.Collection(countersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.customers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "customer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create customer index: %w", err)
	}
	_, err = s.transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "transaction_date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create transaction index: %w", err)
	}
	return nil
}

// nextID atomically increments and returns the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return out.Seq, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	id, err := s.nextID(ctx, customersCollection)
	if err != nil {
		return core.Customer{}, err
	}
	c.ID = id
	if _, err := s.customers.InsertOne(ctx, toCustomerDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.Customer{}, &core.CustomerExistsError{CustomerID: c.CustomerID}
		}
		return core.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

func (s *Store) FindCustomer(ctx context.Context, customerID string) (core.Customer, error) {
	var doc customerDoc
	err := s.customers.FindOne(ctx, bson.M{"customer_id": customerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Customer{}, &core.CustomerNotFoundError{CustomerID: customerID}
	}
	if err != nil {
		return core.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return fromCustomerDoc(doc), nil
}

func (s *Store) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.FindCustomer(ctx, t.CustomerID); err != nil {
		return core.Transaction{}, err
	}
	id, err := s.nextID(ctx, transactionsCollection)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	doc, err := toTransactionDoc(t)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.transactions.InsertOne(ctx, doc); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) ListCustomerTransactions(ctx context.Context, customerID string, start, end core.Date) ([]core.Transaction, error) {
	return s.find(ctx, customerRangeFilter(customerID, start, end))
}

func customerRangeFilter(customerID string, start, end core.Date) bson.M {
	return bson.M{
		"customer_id": customerID,
		"transaction_date": bson.M{
			"$gte": start.String(),
			"$lte": end.String(),
		},
	}
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]core.Transaction, error) {
	cur, err := s.transactions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := fromTransactionDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toCustomerDoc(c core.Customer) customerDoc {
	return customerDoc{ID: c.ID, CustomerID: c.CustomerID, Name: c.Name}
}

func fromCustomerDoc(d customerDoc) core.Customer {
	return core.Customer{ID: d.ID, CustomerID: d.CustomerID, Name: d.Name}
}

func toTransactionDoc(t core.Transaction) (transactionDoc, error) {
	amount, err := primitive.ParseDecimal128(t.Amount.String())
	if err != nil {
		return transactionDoc{}, fmt.Errorf("encode amount %s: %w", t.Amount, err)
	}
	return transactionDoc{
		ID:         t.ID,
		CustomerID: t.CustomerID,
		Amount:     amount,
		Date:       t.Date.String(),
	}, nil
}

func fromTransactionDoc(d transactionDoc) (core.Transaction, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of transaction %d: %w", d.ID, err)
	}
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date of transaction %d: %w", d.ID, err)
	}
	return core.Transaction{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		Amount:     amount,
		Date:       date,
	}, nil
}
