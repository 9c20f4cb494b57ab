package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDoc stores the price as Decimal128 so it stays exact in the database.
type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Slug        string               `bson:"slug"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Quantity    int                  `bson:"quantity"`
}

// Mongo is the document database backend with users, products and orders
// collections.
type Mongo struct {
	client   *mongo.Client
	orders   *mongo.Collection
	users    *mongo.Collection
	products *mongo.Collection
	timeout  time.Duration
	now      func() time.Time
}

// OpenMongo connects, pings and ensures indexes.
func OpenMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if database == "" {
		database = "ecommerce"
	}

	connectCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:   client,
		orders:   db.Collection("orders"),
		users:    db.Collection("users"),
		products: db.Collection("products"),
		timeout:  timeout,
		now:      time.Now,
	}
	if err := m.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "payment.transactionId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"payment.transactionId": bson.M{"$gt": ""}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	_, err = m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	if err := order.Prepare(newID(), m.now().UTC().Truncate(time.Millisecond)); err != nil {
		return models.Order{}, err
	}
	if _, err := m.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) && order.Payment.TransactionID != "" {
			var existing models.Order
			findErr := m.orders.FindOne(ctx, bson.M{"payment.transactionId": order.Payment.TransactionID}).Decode(&existing)
			if findErr == nil {
				return existing, nil
			}
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.Order{}, ErrDuplicate
		}
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (m *Mongo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	var order models.Order
	if err := m.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return models.Order{}, notFound(err)
	}
	return order, nil
}

func (m *Mongo) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	query := bson.M{}
	if filter.Buyer != "" {
		query["buyer"] = filter.Buyer
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := m.orders.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *Mongo) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": m.now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	if err := m.orders.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return models.Order{}, notFound(err)
	}
	return order, nil
}

func (m *Mongo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	if user.ID == "" {
		user.ID = newID()
	}
	if _, err := m.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (m *Mongo) GetUser(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (m *Mongo) UpdateUserProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}
	if len(set) == 0 {
		return m.GetUser(ctx, id)
	}

	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := m.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (m *Mongo) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *Mongo) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	if product.ID == "" {
		product.ID = newID()
	}
	doc, err := toProductDoc(product)
	if err != nil {
		return models.Product{}, err
	}
	if _, err := m.products.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Product{}, ErrDuplicate
		}
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (m *Mongo) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func toProductDoc(p models.Product) (productDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		Quantity:    p.Quantity,
	}, nil
}

func (d productDoc) toModel() (models.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s price: %w", d.ID, err)
	}
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       price,
		Quantity:    d.Quantity,
	}, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
