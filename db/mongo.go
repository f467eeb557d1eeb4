package db

import (
	"context"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"chat-relay/internal/logger"
	"chat-relay/config"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Enabled reports whether a Mongo URI is configured. The relay runs
// without Mongo; chat logs are simply skipped.
func Enabled() bool {
	return os.Getenv("MONGODB_URI") != ""
}

// Init initializes the global Mongo client and database.
// The URI comes from MONGODB_URI; the database name from config.
func Init(ctx context.Context) error {
	var initErr error
	clientOnce.Do(func() {
		uri := os.Getenv("MONGODB_URI")
		dbName := config.GetConfig().MongoDBName
		if dbName == "" {
			dbName = "chatrelay"
		}

		cl, err := mongo.NewClient(options.Client().ApplyURI(uri))
		if err != nil {
			initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := cl.Connect(ctx); err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(dbName)

		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		logger.Log.Info("MongoDB connected and indexes ensured")
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// chat_logs: query patterns are "recent requests" and "per-model usage"
	{
		mi := mongo.IndexModel{
			Keys:    bson.D{{Key: "requested_at", Value: -1}},
			Options: options.Index().SetName("idx_requested_at_desc"),
		}
		if _, err := d.Collection("chat_logs").Indexes().CreateOne(ctx, mi); err != nil {
			return err
		}
	}
	{
		mi := mongo.IndexModel{
			Keys:    bson.D{{Key: "model_id", Value: 1}, {Key: "requested_at", Value: -1}},
			Options: options.Index().SetName("idx_model_requested_at"),
		}
		if _, err := d.Collection("chat_logs").Indexes().CreateOne(ctx, mi); err != nil {
			return err
		}
	}
	return nil
}
