package db

import (
	"context"
	"time"
)

// TokenProvider acquires the short-lived password for cloud IAM database logins.
type TokenProvider interface {
	// GetToken returns a fresh token and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for verbose logs. It must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
