package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/mongodb"
	"github.com/shreyas2228/momentcraftres/internal/config"
	"github.com/shreyas2228/momentcraftres/internal/logger"
)

// Creates the MongoDB indexes the API relies on. The server also does this on
// start; run it ahead of a deploy against a database with existing data to
// surface duplicate-key violations early.
// Usage: go run scripts/create_indexes.go
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	// Atlas can be slow to select a server
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.MongoURI).SetServerSelectionTimeout(30*time.Second))
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	db := client.Database(cfg.Database.MongoDatabase)

	failed := 0
	for coll, models := range mongodb.Indexes {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			failed++
			log.WithError(err).WithField("collection", coll).Error("Failed to create indexes")
			continue
		}
		log.WithFields(logrus.Fields{"collection": coll, "indexes": names}).Info("Indexes in place")
	}
	if failed > 0 {
		log.WithField("collections", failed).Fatal("Some indexes could not be created")
	}
	log.Info("All indexes created")
}
