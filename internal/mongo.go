package internal

import (
	"applepay/config"
	"applepay/entity"
	"applepay/services"
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log"
)

const (
	collectionLog      = "relay_log"
	collectionPayments = "payments"
)

// MongoDB is the optional audit sink: log records and payment attempt records.
// Nothing in the request path reads from it; the relay works identically with
// the sink disabled.
type MongoDB struct {
	ctx              context.Context
	clientOptions    *options.ClientOptions
	database         string
	logRecordsNumber int64
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:              context.Background(),
		clientOptions:    clientOptions,
		database:         conf.Mongo.Database,
		logRecordsNumber: conf.LogRecords,
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	err := connection.Disconnect(m.ctx)
	if err != nil {
		log.Println("mongodb disconnect error", err)
	}
}

func (m *MongoDB) WriteLogMessage(data services.Data) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	if _, err = collection.InsertOne(m.ctx, data); err != nil {
		return err
	}
	m.trimLogRecords(connection)
	return nil
}

// trimLogRecords keeps the log collection bounded when log_records is set.
func (m *MongoDB) trimLogRecords(connection *mongo.Client) {
	if m.logRecordsNumber <= 0 {
		return
	}
	collection := connection.Database(m.database).Collection(collectionLog)
	count, err := collection.CountDocuments(m.ctx, bson.D{})
	if err != nil || count <= m.logRecordsNumber {
		return
	}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}}).SetLimit(count - m.logRecordsNumber)
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return
	}
	var ids []interface{}
	for cursor.Next(m.ctx) {
		var doc bson.M
		if err = cursor.Decode(&doc); err != nil {
			continue
		}
		ids = append(ids, doc["_id"])
	}
	_ = cursor.Close(m.ctx)
	if len(ids) > 0 {
		_, _ = collection.DeleteMany(m.ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	}
}

func (m *MongoDB) SavePaymentRecord(ctx context.Context, record *entity.PaymentRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "reference", Value: record.Reference}}
	set := bson.M{"$set": record}
	collection := connection.Database(m.database).Collection(collectionPayments)
	_, err = collection.UpdateOne(ctx, filter, set, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	return nil
}
