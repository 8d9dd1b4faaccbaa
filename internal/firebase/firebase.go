package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Config struct {
	ProjectID string
	// CredentialsFile is a service account key path.
	CredentialsFile string
	// CredentialsJSONBase64 is a base64 encoded service account key; used
	// when CredentialsFile is empty.
	CredentialsJSONBase64 string
}

// NewApp initializes the Firebase Admin SDK. With no credentials configured
// it falls back to Application Default Credentials, which also covers the
// Firestore emulator.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	switch {
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase credentials file not found: %s", cfg.CredentialsFile)
		}
		zap.L().Info("firebase: using credentials file", zap.String("path", cfg.CredentialsFile))
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil

	case cfg.CredentialsJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		zap.L().Info("firebase: using base64 service account from environment")
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil

	default:
		zap.L().Info("firebase: using application default credentials")
		return nil, nil
	}
}
