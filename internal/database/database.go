package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	coursesCollection       = "courses"
	conversationsCollection = "conversations"
	examsCollection         = "exams"
	loginCountsCollection   = "logincounts"
	fileBucketName          = "courseFiles"
)

type MongoStudiumRepository struct {
	client *mongo.Client
	db     *mongo.Database
	bucket *gridfs.Bucket
}

func NewMongoStudiumRepository(ctx context.Context, uri, dbName string) (*MongoStudiumRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(dbName)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(fileBucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	repo := &MongoStudiumRepository{
		client: client,
		db:     db,
		bucket: bucket,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return repo, nil
}

func (db *MongoStudiumRepository) ensureIndexes(ctx context.Context) error {
	_, err := db.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "studentNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "socket", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.db.Collection(loginCountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (db *MongoStudiumRepository) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

func (db *MongoStudiumRepository) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *MongoStudiumRepository) users() *mongo.Collection {
	return db.db.Collection(usersCollection)
}

func (db *MongoStudiumRepository) courses() *mongo.Collection {
	return db.db.Collection(coursesCollection)
}

func (db *MongoStudiumRepository) conversations() *mongo.Collection {
	return db.db.Collection(conversationsCollection)
}

func (db *MongoStudiumRepository) exams() *mongo.Collection {
	return db.db.Collection(examsCollection)
}

func (db *MongoStudiumRepository) loginCounts() *mongo.Collection {
	return db.db.Collection(loginCountsCollection)
}
