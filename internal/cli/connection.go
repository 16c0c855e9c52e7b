package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/bestiary/internal/config"
	"github.com/vvka-141/bestiary/internal/db"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// connectionFlags holds the PostgreSQL connection flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	sslCert        string
	sslKey         string
	sslRootCert    string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
}

// isSet reports whether any PostgreSQL-specific flag was given.
func (f connectionFlags) isSet() bool {
	return f.connection != "" || f.host != "" || f.port != 0 || f.username != "" ||
		f.database != "" || f.sslMode != "" || f.sslCert != "" || f.sslKey != "" ||
		f.sslRootCert != "" || f.azure || f.aws || f.google
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	// Connection string flag (mutually exclusive with granular flags)
	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI, ADO.NET or key=value format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: BESTIARY_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://importer@localhost:5432/game")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > bestiary.yaml > default
	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > bestiary.yaml > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > bestiary.yaml > 5432")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Database holding the creature tables (default: $PGDATABASE or postgres)\n"+
			"Overrides the database of --connection")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	flags.StringVar(&f.sslCert, "sslcert", "", "Client certificate file (or $PGSSLCERT)")
	flags.StringVar(&f.sslKey, "sslkey", "", "Client private key file (or $PGSSLKEY)")
	flags.StringVar(&f.sslRootCert, "sslrootcert", "", "Root CA certificate file (or $PGSSLROOTCERT)")

	// Cloud IAM flags
	flags.BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses a Service Principal when AZURE_CLIENT_SECRET is set, DefaultAzureCredential otherwise")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	flags.BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (credentials from the default AWS chain)")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")
	flags.BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication through the Cloud SQL connector")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
}

// resolveConnection resolves the PostgreSQL connection from flags, the
// environment and bestiary.yaml.
func resolveConnection(f connectionFlags, projectCfg *config.ProjectConfig) (*bestiary.ConnectionConfig, error) {
	granular := &db.GranularConnFlags{
		Host:        f.host,
		Port:        f.port,
		Username:    f.username,
		Database:    f.database,
		SSLMode:     f.sslMode,
		SSLCert:     f.sslCert,
		SSLKey:      f.sslKey,
		SSLRootCert: f.sslRootCert,
	}
	cloud := &db.CloudFlags{
		Azure:          f.azure,
		AzureTenantID:  f.azureTenantID,
		AzureClientID:  f.azureClientID,
		AWS:            f.aws,
		AWSRegion:      f.awsRegion,
		Google:         f.google,
		GoogleInstance: f.googleInstance,
	}
	return db.ResolveConnectionParams(f.connection, granular, cloud, db.LoadFromEnvironment(), projectCfg)
}
