package bestiary

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed (or validated, with --dry-run)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitInvalidInput    = 12 // Input files rejected; nothing was written
	ExitWriteFailed     = 13 // Upsert or commit failed; nothing was written
)

const (
	// DefaultCreaturesFile is the creature CSV, relative to the data directory.
	DefaultCreaturesFile = "creatures.csv"

	// DefaultBiosFile is the bio CSV, relative to the data directory.
	DefaultBiosFile = "bios.csv"

	// DefaultSpritesDir holds the battle sprite images, relative to the data directory.
	DefaultSpritesDir = "battle_sprites"

	// DefaultTimeout bounds a whole import run.
	DefaultTimeout = 3 * time.Minute

	// DefaultAppName is reported to PostgreSQL as application_name.
	DefaultAppName = "bestiary"

	// ConfigFileName is the optional project file looked up in the data directory.
	ConfigFileName = "bestiary.yaml"
)
