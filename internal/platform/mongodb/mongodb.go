// Package mongodb opens the shared MongoDB client used by document-store backends.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options configures the connection. Zero values use defaults.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration // default 10s
}

// Connect dials MongoDB, pings the primary and returns the named database.
// The caller owns the returned client and must Disconnect it.
func Connect(ctx context.Context, opts Options) (*mongo.Client, *mongo.Database, error) {
	uri := strings.TrimSpace(opts.URI)
	if uri == "" {
		return nil, nil, errors.New("MONGODB_URI is required")
	}
	if opts.Database == "" {
		opts.Database = "forum"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(opts.Database), nil
}
