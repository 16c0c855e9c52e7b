package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/bestiary/internal/config"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag. Use $PGPASSWORD, ~/.pgpass or a connection string.
type GranularConnFlags struct {
	Host        string
	Port        int
	Username    string
	Database    string
	SSLMode     string
	SSLCert     string
	SSLKey      string
	SSLRootCert string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database and the certificate paths are excluded: they may refine a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and configures cloud IAM authentication.
// Secrets are only read from the environment.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string // Overrides AZURE_TENANT_ID
	AzureClientID string // Overrides AZURE_CLIENT_ID

	AWS       bool
	AWSRegion string // Overrides AWS_REGION

	Google         bool
	GoogleInstance string
}

// selected counts how many providers were requested explicitly.
func (c *CloudFlags) selected() int {
	n := 0
	for _, on := range []bool{c.Azure, c.AWS, c.Google} {
		if on {
			n++
		}
	}
	return n
}

// EnvVars represents PostgreSQL standard environment variables plus the
// cloud SDK variables the connectors honour.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST        string
	PGPORT        string
	PGUSER        string
	PGPASSWORD    string
	PGDATABASE    string
	PGSSLMODE     string
	PGSSLCERT     string
	PGSSLKEY      string
	PGSSLROOTCERT string

	// Full connection strings. BESTIARY_CONNECTION_STRING wins over DATABASE_URL.
	BESTIARY_CONNECTION_STRING string
	DATABASE_URL               string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                     os.Getenv("PGHOST"),
		PGPORT:                     os.Getenv("PGPORT"),
		PGUSER:                     os.Getenv("PGUSER"),
		PGPASSWORD:                 os.Getenv("PGPASSWORD"),
		PGDATABASE:                 os.Getenv("PGDATABASE"),
		PGSSLMODE:                  os.Getenv("PGSSLMODE"),
		PGSSLCERT:                  os.Getenv("PGSSLCERT"),
		PGSSLKEY:                   os.Getenv("PGSSLKEY"),
		PGSSLROOTCERT:              os.Getenv("PGSSLROOTCERT"),
		BESTIARY_CONNECTION_STRING: os.Getenv("BESTIARY_CONNECTION_STRING"),
		DATABASE_URL:               os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:            os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:            os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:        os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:                 os.Getenv("AWS_REGION"),
	}
}

func (e *EnvVars) connectionString() string {
	if e.BESTIARY_CONNECTION_STRING != "" {
		return e.BESTIARY_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection)
//  2. Granular flags (-h, -p, -U, -d), each falling back to PG* variables,
//     then bestiary.yaml, then defaults
//  3. BESTIARY_CONNECTION_STRING or DATABASE_URL when no granular flag is set
//
// Cloud authentication is chosen by an explicit flag (--azure, --aws, --google),
// then auth_method in bestiary.yaml, then the presence of AZURE_TENANT_ID or
// AZURE_CLIENT_ID.
//
// Returns an error if both --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*bestiary.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/game\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U importer -d game\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=importer: %w",
			bestiary.ErrInvalidConfig,
		)
	}
	if cloud.selected() > 1 {
		return nil, fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", bestiary.ErrInvalidConfig)
	}

	var cfg *bestiary.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, env)
	case granular.IsEmpty() && env.connectionString() != "":
		cfg, err = resolveFromConnectionString(env.connectionString(), env)
	default:
		cfg, err = resolveFromGranularParams(granular, env, project)
	}
	if err != nil {
		return nil, err
	}

	if granular.Database != "" {
		cfg.Database = granular.Database
	}
	if granular.SSLCert != "" {
		cfg.SSLCert = granular.SSLCert
	}
	if granular.SSLKey != "" {
		cfg.SSLKey = granular.SSLKey
	}
	if granular.SSLRootCert != "" {
		cfg.SSLRootCert = granular.SSLRootCert
	}
	if cfg.SSLCert != "" && cfg.SSLKey != "" && cfg.AuthMethod == bestiary.AuthMethodStandard {
		cfg.AuthMethod = bestiary.AuthMethodCertificate
	}

	if err := applyCloudAuth(cfg, cloud, env, project); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCloudAuth sets the cloud IAM method and its parameters on cfg.
// CLI flags take precedence over environment variables, which take precedence over bestiary.yaml.
func applyCloudAuth(cfg *bestiary.ConnectionConfig, flags *CloudFlags, env *EnvVars, project *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	method := bestiary.AuthMethodStandard
	switch {
	case flags.Azure:
		method = bestiary.AuthMethodAzureEntraID
	case flags.AWS:
		method = bestiary.AuthMethodAWSIAM
	case flags.Google:
		method = bestiary.AuthMethodGoogleIAM
	case pc.AuthMethod != "":
		m, err := bestiary.ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		method = m
	case flags.AzureTenantID != "" || flags.AzureClientID != "" || env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "":
		method = bestiary.AuthMethodAzureEntraID
	}

	switch method {
	case bestiary.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case bestiary.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case bestiary.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case bestiary.AuthMethodStandard, bestiary.AuthMethodCertificate:
		return nil
	}
	cfg.AuthMethod = method
	return nil
}

// resolveFromConnectionString parses a connection string. PG* variables fill
// the TLS parameters the string leaves out, the way libpq does.
func resolveFromConnectionString(connStr string, env *EnvVars) (*bestiary.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, bestiary.ErrInvalidConfig)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, defaultSSLMode)
	}
	cfg.SSLCert = firstNonEmpty(cfg.SSLCert, env.PGSSLCERT)
	cfg.SSLKey = firstNonEmpty(cfg.SSLKey, env.PGSSLKEY)
	cfg.SSLRootCert = firstNonEmpty(cfg.SSLRootCert, env.PGSSLROOTCERT)
	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig field by field:
// CLI flag, then environment variable, then bestiary.yaml, then default.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*bestiary.ConnectionConfig, error) {
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	cfg := newDefaultConfig()
	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, pc.Host, defaultHost)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, bestiary.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database, defaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, defaultSSLMode)
	cfg.SSLCert = firstNonEmpty(flags.SSLCert, env.PGSSLCERT, pc.SSLCert)
	cfg.SSLKey = firstNonEmpty(flags.SSLKey, env.PGSSLKEY, pc.SSLKey)
	cfg.SSLRootCert = firstNonEmpty(flags.SSLRootCert, env.PGSSLROOTCERT, pc.SSLRootCert)

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
