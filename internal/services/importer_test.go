package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/bestiary/internal/catalog"
	"github.com/vvka-141/bestiary/internal/logging"
	"github.com/vvka-141/bestiary/internal/store"
	"github.com/vvka-141/bestiary/internal/store/sqlite"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

const creaturesHeader = "name,health,attack,intelligence,defense,speed,klass,race,sources,trait,battle_sprite\n"

const testMonRow = `Test Mon,10,5,3,4,6,Fire,Dragon,"Book A, Book B",Brave,test.png` + "\n"

func testFiles(creatures string) fstest.MapFS {
	return fstest.MapFS{
		"creatures.csv":           {Data: []byte(creaturesHeader + creatures)},
		"bios.csv":                {Data: []byte("name,bio\nTest Mon,\"A test.\nCreature.\"\n")},
		"battle_sprites/test.png": {Data: []byte("PNG")},
	}
}

func wantTestMon() bestiary.Creature {
	return bestiary.Creature{
		Slug: "test-mon", Name: "Test Mon", Description: "A test. Creature.", BattleSprite: "UE5H",
		Health: 10, Attack: 5, Intelligence: 3, Defense: 4, Speed: 6,
		KlassID: 1, RaceID: 2, TraitID: 3, SourceIDs: []int64{4, 5},
	}
}

func newTestService(m *memStore, files fstest.MapFS) *ImportService {
	svc := NewImportService(m.opener(), logging.NewNullLogger())
	svc.openDir = func(string) fs.FS { return files }
	svc.newRunID = func() string { return "run-1" }
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func testConfig() bestiary.ImportConfig {
	return bestiary.ImportConfig{DataDir: "data", SQLitePath: "unused.db"}
}

func TestNewImportService_NilDeps(t *testing.T) {
	assert.Panics(t, func() { NewImportService(nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { NewImportService(newMemStore().opener(), nil) })
}

func TestImport_TestMon(t *testing.T) {
	m := newMemStore()
	svc := newTestService(m, testFiles(testMonRow))

	res, err := svc.Import(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, &bestiary.ImportResult{RunID: "run-1", Rows: 1, Inserted: 1, Duration: time.Second}, res)
	assert.Equal(t, map[string]bestiary.Creature{"test-mon": wantTestMon()}, m.creatures)
	assert.Equal(t, 1, m.commits)
	assert.Equal(t, 0, m.rollbacks)
	assert.True(t, m.closed)
}

func TestImport_ReimportUpdatesInPlace(t *testing.T) {
	m := newMemStore()
	ctx := context.Background()

	_, err := newTestService(m, testFiles(testMonRow)).Import(ctx, testConfig())
	require.NoError(t, err)

	changed := `Test Mon,12,5,3,4,6,Fire,Dragon,"Book A, Book B",Brave,test.png` + "\n"
	res, err := newTestService(m, testFiles(changed)).Import(ctx, testConfig())
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Inserted)
	assert.Equal(t, int64(1), res.Updated)
	want := wantTestMon()
	want.Health = 12
	assert.Equal(t, map[string]bestiary.Creature{"test-mon": want}, m.creatures)
}

func TestImport_UnknownReferenceWritesNothing(t *testing.T) {
	m := newMemStore()
	m.creatures["old-mon"] = bestiary.Creature{Slug: "old-mon", Name: "Old Mon"}

	rows := testMonRow + `Bad Mon,1,1,1,1,1,Fire,Unicorn,Book A,Brave,test.png` + "\n"
	_, err := newTestService(m, testFiles(rows)).Import(context.Background(), testConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, bestiary.ErrInvalidInput)
	var unknown *catalog.UnknownReferenceError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, bestiary.CategoryRace, unknown.Category)
	assert.Equal(t, 3, unknown.Line)

	assert.Equal(t, 0, m.commits)
	assert.Equal(t, 1, m.rollbacks)
	assert.Equal(t, map[string]bestiary.Creature{"old-mon": {Slug: "old-mon", Name: "Old Mon"}}, m.creatures)
	assert.True(t, m.closed)
}

func TestImport_DryRun(t *testing.T) {
	m := newMemStore()
	cfg := testConfig()
	cfg.DryRun = true

	res, err := newTestService(m, testFiles(testMonRow)).Import(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, int64(1), res.Inserted)
	assert.Empty(t, m.creatures)
	assert.Equal(t, 0, m.commits)
	assert.Equal(t, 1, m.rollbacks)
}

func TestImport_BioMissIsNotFatal(t *testing.T) {
	m := newMemStore()
	files := testFiles(testMonRow)
	files["bios.csv"] = &fstest.MapFile{Data: []byte("name,bio\nSomeone Else,Hi\n")}

	_, err := newTestService(m, files).Import(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "", m.creatures["test-mon"].Description)
}

func TestImport_EmptyCreatureFile(t *testing.T) {
	m := newMemStore()

	res, err := newTestService(m, testFiles("")).Import(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, 1, m.commits)
}

func TestImport_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		files     func() fstest.MapFS
		setup     func(m *memStore)
		cfg       func(c *bestiary.ImportConfig)
		wantErr   error
		wantBegun int
	}{
		{
			name:    "invalid config",
			cfg:     func(c *bestiary.ImportConfig) { c.DataDir = "" },
			wantErr: bestiary.ErrInvalidConfig,
		},
		{
			name: "missing bios file",
			files: func() fstest.MapFS {
				f := testFiles(testMonRow)
				delete(f, "bios.csv")
				return f
			},
			wantErr: bestiary.ErrInvalidInput,
		},
		{
			name: "malformed creature csv",
			files: func() fstest.MapFS {
				f := testFiles(testMonRow)
				f["creatures.csv"] = &fstest.MapFile{Data: []byte(creaturesHeader + "\"unterminated\n")}
				return f
			},
			wantErr: bestiary.ErrInvalidInput,
		},
		{
			name: "missing sprite",
			files: func() fstest.MapFS {
				f := testFiles(testMonRow)
				delete(f, "battle_sprites/test.png")
				return f
			},
			wantErr:   bestiary.ErrInvalidInput,
			wantBegun: 1,
		},
		{
			name:      "begin fails",
			setup:     func(m *memStore) { m.beginErr = boom },
			wantErr:   boom,
			wantBegun: 0,
		},
		{
			name:      "reference load fails",
			setup:     func(m *memStore) { m.listErr = boom },
			wantErr:   boom,
			wantBegun: 1,
		},
		{
			name:      "upsert fails",
			setup:     func(m *memStore) { m.upsertErr = boom },
			wantErr:   bestiary.ErrWriteFailed,
			wantBegun: 1,
		},
		{
			name:      "commit fails",
			setup:     func(m *memStore) { m.commitErr = boom },
			wantErr:   bestiary.ErrWriteFailed,
			wantBegun: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStore()
			if tt.setup != nil {
				tt.setup(m)
			}
			files := testFiles(testMonRow)
			if tt.files != nil {
				files = tt.files()
			}
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}

			_, err := newTestService(m, files).Import(context.Background(), cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantBegun, m.begun)
			assert.Empty(t, m.creatures)
			assert.Equal(t, 0, m.commits)
			assert.Equal(t, tt.wantBegun, m.rollbacks)
		})
	}
}

func TestImport_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bestiary.db")

	seed, err := sqlite.Open(ctx, dbPath, bestiary.TableNames{})
	require.NoError(t, err)
	_, err = seed.DB().ExecContext(ctx, sqlite.Schema(bestiary.TableNames{})+`
INSERT INTO klass (id, slug, name) VALUES (1, 'fire', 'Fire');
INSERT INTO race (id, slug, name) VALUES (2, 'dragon', 'Dragon');
INSERT INTO trait (id, slug, name) VALUES (3, 'brave', 'Brave');
INSERT INTO source (id, slug, name) VALUES (4, 'book-a', 'Book A'), (5, 'book-b', 'Book B');
`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	for name, f := range testFiles(testMonRow) {
		path := filepath.Join(dir, "data", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}

	cfg := bestiary.ImportConfig{DataDir: filepath.Join(dir, "data"), SQLitePath: dbPath}
	svc := NewImportService(store.Open, logging.NewNullLogger())

	first, err := svc.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Inserted)

	second, err := svc.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Updated)
	assert.NotEqual(t, first.RunID, second.RunID)

	check, err := sqlite.Open(ctx, dbPath, bestiary.TableNames{})
	require.NoError(t, err)
	defer check.Close()

	var (
		count              int
		slug, desc, sprite string
		sources            string
		health, klassID    int64
	)
	require.NoError(t, check.DB().QueryRow("SELECT count(*) FROM creature").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, check.DB().QueryRow(
		"SELECT slug, description, battle_sprite, source_ids, health, klass_id FROM creature",
	).Scan(&slug, &desc, &sprite, &sources, &health, &klassID))
	assert.Equal(t, "test-mon", slug)
	assert.Equal(t, "A test. Creature.", desc)
	assert.Equal(t, "UE5H", sprite)
	assert.JSONEq(t, "[4, 5]", sources)
	assert.Equal(t, int64(10), health)
	assert.Equal(t, int64(1), klassID)
}
