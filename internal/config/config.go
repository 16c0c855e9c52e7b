// Package config reads the optional bestiary.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig is the `connection:` block. Passwords and client secrets
// are never read from the file.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// FilesConfig overrides the input locations, relative to the data directory.
type FilesConfig struct {
	Creatures string `yaml:"creatures,omitempty"`
	Bios      string `yaml:"bios,omitempty"`
	Sprites   string `yaml:"sprites,omitempty"`
}

// TablesConfig overrides table names. A name may be schema-qualified ("game.creature").
type TablesConfig struct {
	Klass    string `yaml:"klass,omitempty"`
	Race     string `yaml:"race,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Trait    string `yaml:"trait,omitempty"`
	Creature string `yaml:"creature,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Files      FilesConfig      `yaml:"files"`
	Tables     TablesConfig     `yaml:"tables"`
	SQLite     string           `yaml:"sqlite,omitempty"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = bestiary.ConfigFileName

// Load reads bestiary.yaml from dataDir.
func Load(dataDir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dataDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

// FileSet returns the configured input locations with defaults filled in.
func (p *ProjectConfig) FileSet() bestiary.FileSet {
	if p == nil {
		return bestiary.DefaultFileSet()
	}
	return bestiary.FileSet{
		Creatures: p.Files.Creatures,
		Bios:      p.Files.Bios,
		Sprites:   p.Files.Sprites,
	}.WithDefaults()
}

// TableNames returns the configured table names with defaults filled in.
func (p *ProjectConfig) TableNames() bestiary.TableNames {
	if p == nil {
		return bestiary.DefaultTableNames()
	}
	return bestiary.TableNames{
		Klass:    p.Tables.Klass,
		Race:     p.Tables.Race,
		Source:   p.Tables.Source,
		Trait:    p.Tables.Trait,
		Creature: p.Tables.Creature,
	}.WithDefaults()
}

// ParseTimeout returns the configured timeout, or zero when none is set.
func (p *ProjectConfig) ParseTimeout() (time.Duration, error) {
	if p == nil || p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", p.Timeout, ConfigFileName, bestiary.ErrInvalidConfig)
	}
	return d, nil
}
