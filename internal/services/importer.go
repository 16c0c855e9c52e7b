package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/bestiary/internal/catalog"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// StoreOpener opens the store an import runs against.
type StoreOpener func(ctx context.Context, cfg *bestiary.ImportConfig, logger bestiary.Logger) (bestiary.Store, error)

// ImportService runs the creature import: read the inputs, build the reference
// indexes and the bio table, transform every row, and upsert the batch, all in
// one transaction.
// Thread-Safety: NOT safe for concurrent Import() calls on the same instance.
type ImportService struct {
	openStore StoreOpener
	logger    bestiary.Logger
	openDir   func(dir string) fs.FS
	now       func() time.Time
	newRunID  func() string
}

// NewImportService creates an ImportService. Panics on nil dependencies.
func NewImportService(openStore StoreOpener, logger bestiary.Logger) *ImportService {
	if openStore == nil {
		panic("openStore cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ImportService{
		openStore: openStore,
		logger:    logger,
		openDir:   os.DirFS,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// inputs are the parsed input files, read before the store is touched.
type inputs struct {
	creatures *catalog.Table
	bios      catalog.Bios
	sprites   catalog.SpriteLoader
}

// Import runs one import. With cfg.DryRun everything including the upsert
// runs and the transaction is rolled back.
func (s *ImportService) Import(ctx context.Context, cfg bestiary.ImportConfig) (*bestiary.ImportResult, error) {
	cfg.Files = cfg.Files.WithDefaults()
	cfg.Tables = cfg.Tables.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	started := s.now()
	result := &bestiary.ImportResult{RunID: s.newRunID(), DryRun: cfg.DryRun}
	s.logger.Verbose("[run %s] importing from %s", result.RunID, cfg.DataDir)

	in, err := s.readInputs(cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("[run %s] read %d creature row(s) and %d bio(s)", result.RunID, len(in.creatures.Rows), len(in.bios))

	store, err := s.openStore(ctx, &cfg, s.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			s.logger.Verbose("[run %s] close store: %v", result.RunID, cerr)
		}
	}()

	tx, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.Error("[run %s] rollback: %v", result.RunID, rerr)
		}
	}()

	upserted, err := s.run(ctx, tx, in, cfg.Files.Creatures, result.RunID)
	if err != nil {
		return nil, err
	}
	result.Rows = int(upserted.Total())
	result.Inserted = upserted.Inserted
	result.Updated = upserted.Updated

	if cfg.DryRun {
		s.logger.Verbose("[run %s] dry run, rolling back", result.RunID)
	} else {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", bestiary.ErrWriteFailed, err)
		}
		committed = true
	}

	result.Duration = s.now().Sub(started)
	return result, nil
}

// run executes the pipeline inside tx.
func (s *ImportService) run(ctx context.Context, tx bestiary.Tx, in *inputs, file, runID string) (bestiary.UpsertResult, error) {
	refs, err := catalog.LoadIndexes(ctx, tx)
	if err != nil {
		return bestiary.UpsertResult{}, err
	}
	s.logger.Verbose("[run %s] loaded references: %d klass, %d race, %d source, %d trait",
		runID, refs.Klass.Len(), refs.Race.Len(), refs.Source.Len(), refs.Trait.Len())

	creatures, err := catalog.NewTransformer(refs, in.bios, in.sprites, file).TransformAll(in.creatures.Rows)
	if err != nil {
		return bestiary.UpsertResult{}, err
	}

	res, err := tx.UpsertCreatures(ctx, creatures)
	if err != nil {
		return bestiary.UpsertResult{}, fmt.Errorf("%w: %w", bestiary.ErrWriteFailed, err)
	}
	s.logger.Verbose("[run %s] upserted %d creature(s): %d inserted, %d updated", runID, res.Total(), res.Inserted, res.Updated)
	return res, nil
}

func (s *ImportService) readInputs(cfg bestiary.ImportConfig) (*inputs, error) {
	dir := s.openDir(cfg.DataDir)

	var bios catalog.Bios
	err := readFile(dir, cfg.Files.Bios, func(r io.Reader) error {
		var err error
		bios, err = catalog.LoadBios(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var creatures *catalog.Table
	err = readFile(dir, cfg.Files.Creatures, func(r io.Reader) error {
		var err error
		creatures, err = catalog.ReadTable(cfg.Files.Creatures, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	spriteDir, err := fs.Sub(dir, cfg.Files.Sprites)
	if err != nil {
		return nil, fmt.Errorf("sprite directory %s: %v: %w", cfg.Files.Sprites, err, bestiary.ErrInvalidConfig)
	}

	return &inputs{
		creatures: creatures,
		bios:      bios,
		sprites:   catalog.NewFSSprites(spriteDir),
	}, nil
}

// readFile opens name in dir and hands it to parse. Any failure is an input error.
func readFile(dir fs.FS, name string, parse func(io.Reader) error) error {
	f, err := dir.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not found: %w", name, bestiary.ErrInvalidInput)
		}
		return fmt.Errorf("open %s: %w: %w", name, bestiary.ErrInvalidInput, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		if errors.Is(err, bestiary.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: %w", bestiary.ErrInvalidInput, err)
	}
	return nil
}
