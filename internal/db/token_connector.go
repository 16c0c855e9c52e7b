package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// tokenExpiryWarning is how close to expiry a fresh token must be before a warning is logged.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a short-lived cloud token (AWS IAM,
// Azure Entra ID) used as the PostgreSQL password.
type TokenBasedConnector struct {
	config        *bestiary.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        bestiary.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages ("AWS IAM", "Azure").
func NewTokenBasedConnector(config *bestiary.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger bestiary.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", c.providerName, bestiary.ErrConnectionFailed, err)
	}
	c.logger.Verbose("Acquired token from %s", c.tokenProvider)

	if left := time.Until(expiresOn); left < tokenExpiryWarning {
		c.logger.Info("Warning: %s token expires in %v", c.providerName, left.Round(time.Second))
	}

	withToken := *c.config
	withToken.Password = token
	c.logger.Verbose("Connecting to %s", Redact(&withToken))

	return openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
}
