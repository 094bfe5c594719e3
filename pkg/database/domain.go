package database

import (
	"fmt"
	"time"

	"chat_presence_service/pkg/config"

	"go.mongodb.org/mongo-driver/mongo"
)

// Connection definition db connect setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// MongoDB definition mongo db
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// MinIOConnection definition minio
type MinIOConnection struct {
	Endpoint   string
	User       string
	Password   string
	BucketName string
	UseSSL     bool
	PublicURL  string

	RetryCount    int
	RetryInterval time.Duration
}

// MongoConnection build mongo connect setting from config
func MongoConnection(c config.DatabaseConfig) Connection {
	return Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s@%s:%d", c.User, c.Password, c.Host, c.Port),
		RetryCount:    c.RetryCount,
		RetryInterval: time.Duration(c.RetryInterval) * time.Second,
	}
}

// PostgresConnection build postgreSQL connect setting from config
func PostgresConnection(c config.DatabaseConfig) Connection {
	return Connection{
		ConnectStr: fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.User, c.Password, c.Host, c.Port, c.Database),
		RetryCount:    c.RetryCount,
		RetryInterval: time.Duration(c.RetryInterval) * time.Second,
	}
}

// NewMinIOSetting build minio connect setting from config
func NewMinIOSetting(c config.MinIOConfig) MinIOConnection {
	return MinIOConnection{
		Endpoint:      c.Endpoint,
		User:          c.User,
		Password:      c.Password,
		BucketName:    c.BucketName,
		UseSSL:        c.UseSSL,
		PublicURL:     c.PublicURL,
		RetryCount:    c.RetryCount,
		RetryInterval: time.Duration(c.RetryInterval) * time.Second,
	}
}
