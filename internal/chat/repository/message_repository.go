package repository

import (
	"context"
	"errors"
	"fmt"

	"chat_presence_service/internal/chat/domain"
	errprocess "chat_presence_service/pkg/err"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository durable CRUD for messages, each call is atomic on its own
type MessageRepository interface {
	// Create 寫入訊息, ID 為空時產生 uuid
	Create(ctx context.Context, msg *domain.Message) (string, error)
	// Get 不存在時回傳 ErrNotFound
	Get(ctx context.Context, id string) (*domain.Message, error)
	// ListBetween 兩人之間的訊息, createdAt 由舊到新
	ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)
	// Update 只更新文字與編輯狀態, 回傳更新後的訊息
	Update(ctx context.Context, id string, patch domain.TextPatch) (*domain.Message, error)
	// Delete 回傳是否真的刪除
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteAllBetween 刪除整段對話, 回傳刪除筆數
	DeleteAllBetween(ctx context.Context, userA, userB string) (int64, error)
}

type mongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{
		coll: db.Collection("messages"),
	}
}

// EnsureMessageIndexes (sender, recipient, created_at) 供 ListBetween 使用
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "recipient_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	return err
}

func chatFilter(userA, userB string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "recipient_id": userB},
		bson.M{"sender_id": userB, "recipient_id": userA},
	}}
}

func (r *mongoMessageRepository) Create(ctx context.Context, msg *domain.Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	return msg.ID, nil
}

func (r *mongoMessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.New(errprocess.ErrNotFound, "message %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &msg, nil
}

func (r *mongoMessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, chatFilter(userA, userB), opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}
	return messages, nil
}

func (r *mongoMessageRepository) Update(ctx context.Context, id string, patch domain.TextPatch) (*domain.Message, error) {
	update := bson.M{"$set": bson.M{
		"text":      patch.Text,
		"edited":    true,
		"edited_at": patch.EditedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg domain.Message
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.New(errprocess.ErrNotFound, "message %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	return &msg, nil
}

func (r *mongoMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoMessageRepository) DeleteAllBetween(ctx context.Context, userA, userB string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, chatFilter(userA, userB))
	if err != nil {
		return 0, fmt.Errorf("delete chat: %w", err)
	}
	return res.DeletedCount, nil
}
