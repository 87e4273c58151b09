package connection

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"teamboard/config"
)

// FBConnection opens a Firestore client through the Firebase app. Without a
// credentials file the client relies on FIRESTORE_EMULATOR_HOST or the
// ambient Google credentials.
func FBConnection(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.FirestoreCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentials))
	}

	var fbConfig *firebase.Config
	if cfg.FirestoreProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirestoreProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	log.Println("[server] Firestore connection successful")
	return client, nil
}
