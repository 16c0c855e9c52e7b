package bestiary

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Category names one of the lookup tables a creature row refers to by name.
type Category string

const (
	CategoryKlass  Category = "klass"
	CategoryRace   Category = "race"
	CategorySource Category = "source"
	CategoryTrait  Category = "trait"
)

// Categories returns every reference category in load order.
func Categories() []Category {
	return []Category{CategoryKlass, CategoryRace, CategorySource, CategoryTrait}
}

// Reference is a pre-existing lookup row (class, race, source or trait).
// Slug is unique within its category.
type Reference struct {
	Slug string
	ID   int64
}

// Creature is a fully resolved creature record ready for the upsert writer.
//
// Slug is the merge key. SourceIDs keeps the order of the input "sources" column.
// BattleSprite holds the base64 encoding of the sprite file.
type Creature struct {
	Slug         string
	Name         string
	Description  string
	BattleSprite string

	Health       int32
	Attack       int32
	Intelligence int32
	Defense      int32
	Speed        int32

	KlassID   int64
	RaceID    int64
	TraitID   int64
	SourceIDs []int64
}

// UpsertResult reports how a batch was merged into the creature table.
type UpsertResult struct {
	Inserted int64
	Updated  int64
}

// Total returns the number of rows written.
func (r UpsertResult) Total() int64 {
	return r.Inserted + r.Updated
}

// FileSet locates the import inputs relative to ImportConfig.DataDir.
type FileSet struct {
	// Creatures is the creature CSV (one row per creature).
	Creatures string

	// Bios is the side CSV with "name" and "bio" columns.
	Bios string

	// Sprites is the directory holding the files named by the battle_sprite column.
	Sprites string
}

// DefaultFileSet returns the conventional data directory layout.
func DefaultFileSet() FileSet {
	return FileSet{
		Creatures: DefaultCreaturesFile,
		Bios:      DefaultBiosFile,
		Sprites:   DefaultSpritesDir,
	}
}

// WithDefaults fills empty entries from DefaultFileSet.
func (f FileSet) WithDefaults() FileSet {
	d := DefaultFileSet()
	if f.Creatures == "" {
		f.Creatures = d.Creatures
	}
	if f.Bios == "" {
		f.Bios = d.Bios
	}
	if f.Sprites == "" {
		f.Sprites = d.Sprites
	}
	return f
}

// TableNames maps each table the importer touches to its name in the store.
type TableNames struct {
	Klass    string
	Race     string
	Source   string
	Trait    string
	Creature string
}

// DefaultTableNames returns the table names used when none are configured.
func DefaultTableNames() TableNames {
	return TableNames{
		Klass:    "klass",
		Race:     "race",
		Source:   "source",
		Trait:    "trait",
		Creature: "creature",
	}
}

// WithDefaults fills empty entries from DefaultTableNames.
func (t TableNames) WithDefaults() TableNames {
	d := DefaultTableNames()
	if t.Klass == "" {
		t.Klass = d.Klass
	}
	if t.Race == "" {
		t.Race = d.Race
	}
	if t.Source == "" {
		t.Source = d.Source
	}
	if t.Trait == "" {
		t.Trait = d.Trait
	}
	if t.Creature == "" {
		t.Creature = d.Creature
	}
	return t
}

// For returns the table holding references of the given category.
func (t TableNames) For(c Category) (string, error) {
	switch c {
	case CategoryKlass:
		return t.Klass, nil
	case CategoryRace:
		return t.Race, nil
	case CategorySource:
		return t.Source, nil
	case CategoryTrait:
		return t.Trait, nil
	default:
		return "", fmt.Errorf("unknown reference category %q", c)
	}
}

// ImportConfig contains all parameters needed for an import run.
type ImportConfig struct {
	// DataDir is the directory the input files are resolved against.
	DataDir string

	// Files locates the creature CSV, the bio CSV and the sprite directory.
	Files FileSet

	// Tables names the reference and creature tables.
	Tables TableNames

	// Connection is the resolved PostgreSQL connection. Nil when SQLitePath is set.
	Connection *ConnectionConfig

	// SQLitePath selects the SQLite store instead of PostgreSQL.
	SQLitePath string

	// DryRun runs the whole pipeline, including the upsert, then rolls back.
	DryRun bool

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks that the ImportConfig is usable.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("DataDir is required: %w", ErrInvalidConfig))
	}

	if c.Connection == nil && c.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("either a PostgreSQL connection or a SQLite path is required: %w", ErrInvalidConfig))
	}
	if c.Connection != nil && c.SQLitePath != "" {
		errs = append(errs, fmt.Errorf("PostgreSQL connection and SQLite path are mutually exclusive: %w", ErrInvalidConfig))
	}
	if c.Connection != nil && !c.Connection.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrUnsupportedAuthMethod))
	}

	for name, p := range map[string]string{
		"creatures file":   c.Files.Creatures,
		"bios file":        c.Files.Bios,
		"sprite directory": c.Files.Sprites,
	} {
		if p == "" {
			errs = append(errs, fmt.Errorf("%s is required: %w", name, ErrInvalidConfig))
			continue
		}
		if filepath.IsAbs(p) || !filepath.IsLocal(p) {
			errs = append(errs, fmt.Errorf("%s %q must be relative to the data directory: %w", name, p, ErrInvalidConfig))
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ImportResult summarizes a finished import run.
type ImportResult struct {
	RunID    string
	Rows     int
	Inserted int64
	Updated  int64
	DryRun   bool
	Duration time.Duration
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Client certificate paths, passed through as libpq parameters.
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID. With tenant, client and secret set a Service Principal is used,
	// otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AWS RDS IAM tokens.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodCertificate                    // mTLS
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodCertificate:
		return "Certificate"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the names accepted in bestiary.yaml to an AuthMethod.
// The empty string means standard authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "cert", "certificate":
		return AuthMethodCertificate, nil
	case "aws", "aws-iam", "aws_iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "google_iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id", "azure_entra_id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
