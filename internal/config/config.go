package config

import (
	"encoding/base64"
	"fmt"
)

type Config struct {
	ServerAddr     string
	MongoURI       string
	DatabaseName   string
	SigningKey     []byte
	AllowedOrigins []string
	StoragePath    string
	SendgridKey    string
	FromEmail      string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, mongoURI, databaseName, base64Secret string, allowedOrigins []string, storagePath, sendgridKey, fromEmail string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if mongoURI == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}
	if databaseName == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if sendgridKey != "" && fromEmail == "" {
		return nil, fmt.Errorf("from email cannot be empty when a sendgrid key is set")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		MongoURI:       mongoURI,
		DatabaseName:   databaseName,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		StoragePath:    storagePath,
		SendgridKey:    sendgridKey,
		FromEmail:      fromEmail,
	}, nil
}
