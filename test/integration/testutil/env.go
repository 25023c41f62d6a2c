package testutil

import (
	"os"
	"testing"
	"time"
)

const (
	DefaultDatabaseName       = "spacelink_test"
	DefaultHealthCheckTimeout = 30 * time.Second
)

// TestEnv describes where the integration suites run. ServerURL is empty
// when the suite should serve the API in-process.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv skips the calling test unless a MongoDB is configured through
// TEST_MONGO_URI or MONGO_URI. An external server given by TEST_SERVER_URL
// must point at the same database and share JWT_SECRET. Set
// MONGO_TRANSACTIONS=false against a standalone mongod.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	mongoURI := getEnv("TEST_MONGO_URI", os.Getenv("MONGO_URI"))
	if mongoURI == "" {
		t.Skip("TEST_MONGO_URI or MONGO_URI not set, skipping integration test")
	}

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    os.Getenv("TEST_SERVER_URL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
