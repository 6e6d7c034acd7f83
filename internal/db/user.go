package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// InsertUser inserts a new user into the database
func (c *MongoUserCollection) InsertUser(ctx context.Context, user models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true

	_, err := c.Collection.InsertOne(ctx, user)
	return err
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserByUsername finds a user by their username
func (c *MongoUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUsers finds users with optional filtering
func (c *MongoUserCollection) FindUsers(ctx context.Context, filter interface{}) (UserCursor, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &mongoUserCursor{cursor: cursor}, nil
}

// UpdateLastLogin updates the last login time for a user
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}

type mongoUserCursor struct {
	cursor *mongo.Cursor
}

func (c *mongoUserCursor) All(ctx context.Context, out interface{}) error {
	return c.cursor.All(ctx, out)
}

func (c *mongoUserCursor) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}
