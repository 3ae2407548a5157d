package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photosort/internal/config"
	"photosort/internal/database"
	"photosort/internal/encryption"
	"photosort/internal/fs"
	"photosort/internal/metadata"
	"photosort/internal/model"
	"photosort/internal/photosort"
	"photosort/internal/snapshot"
)

// PhotosortApp is the application layer between the CLI and PhotosortService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and snapshots the catalog on Close.
type PhotosortApp struct {
	cfg       *config.Config
	db        photosort.Database
	fsmgr     *fs.OSFilesystemManager
	store     photosort.SnapshotStore
	encryptor photosort.Encryptor
	logger    photosort.Logger
	clock     photosort.Clock
	settings  photosort.Settings
	service   *photosort.PhotosortService
	op        *Operation
	logFile   *os.File
}

// RunResult collects the outcome of every pass run by Run.
type RunResult struct {
	Session    *model.ScanSession
	Resolve    *photosort.ResolveStats
	Extraction *photosort.ExtractionStats
	Plan       *photosort.PlanSummary
}

// NewPhotosortApp creates a fully wired PhotosortApp from the given config.
// operation identifies the CLI command being run (e.g. "scan", "plan").
// The caller must call Close when done.
func NewPhotosortApp(cfg *config.Config, operation string) (*PhotosortApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Scanner.Ignore, cfg.Scanner.MaxPathLength)

	store, err := snapshot.NewStoreFromConfig(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &PhotosortApp{
		cfg:       cfg,
		db:        db,
		fsmgr:     fsmgr,
		store:     store,
		encryptor: enc,
		logger:    &slogAdapter{l: logger},
		clock:     photosort.RealClock{},
		settings:  settingsFromConfig(cfg),
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}
	a.service = a.newService(nil)
	return a, nil
}

// settingsFromConfig copies the tuning values as configured; config.Manager
// has already filled in defaults for keys the file leaves out. Only the
// progress interval, where zero has no meaning, falls back to its default.
func settingsFromConfig(cfg *config.Config) photosort.Settings {
	s := photosort.DefaultSettings()
	if cfg.Scanner.ProgressInterval > 0 {
		s.ProgressInterval = cfg.Scanner.ProgressInterval
	}
	s.MinFileSize = cfg.Extractor.MinFileSize
	s.Planner.MinCoverageThreshold = cfg.Planner.MinCoverageThreshold
	s.Planner.MinPrevalenceThreshold = cfg.Planner.MinPrevalenceThreshold
	s.Planner.MaxDateSpanMonths = cfg.Planner.MaxDateSpanMonths
	return s
}

func (a *PhotosortApp) newService(extractor photosort.MetadataExtractor) *photosort.PhotosortService {
	return photosort.NewPhotosortService(a.db, a.fsmgr, extractor, a.logger, a.clock, photosort.UUIDGenerator{}, a.settings)
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. This should only be called for catalog-mutating commands.
func (a *PhotosortApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	if err := a.checkSnapshotVersion(); err != nil {
		return err
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters, a.clock.Now())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// checkSnapshotVersion refuses to mutate a catalog that is older than its
// newest snapshot.
func (a *PhotosortApp) checkSnapshotVersion() error {
	if a.store == nil {
		return nil
	}
	latest, err := photosort.LatestSnapshot(a.store)
	if err != nil {
		return fmt.Errorf("checking snapshot version: %w", err)
	}
	if latest == nil {
		return nil
	}

	ops, err := a.db.ListOperations(1)
	if err != nil {
		return fmt.Errorf("checking local catalog version: %w", err)
	}
	var localMax int64
	if len(ops) > 0 {
		localMax = ops[0].ID
	}
	if latest.Version > localMax {
		return fmt.Errorf("catalog is behind its latest snapshot (local=%d, snapshot=%d): restore it with `photosort snapshot restore`", localMax, latest.Version)
	}
	return nil
}

// fail marks the current operation as failed and passes err through.
func (a *PhotosortApp) fail(err error) error {
	if err != nil {
		a.op.Status = StatusError
	}
	return err
}

// Scan resolves the given path and inventories it.
func (a *PhotosortApp) Scan(rawPath string, resume bool) (*model.ScanSession, error) {
	root, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	params := root.String()
	if resume {
		params += " --resume"
	}
	if err := a.persistOperation(params); err != nil {
		return nil, err
	}
	session, err := a.service.Scan(root, resume)
	return session, a.fail(err)
}

// ResolveDates runs the path-date pass over every session.
func (a *PhotosortApp) ResolveDates(reprocess bool, batchSize int) (*photosort.ResolveStats, error) {
	if err := a.persistOperation(fmt.Sprintf("reprocess=%t batch_size=%d", reprocess, batchSize)); err != nil {
		return nil, err
	}
	stats, err := a.service.ResolveDates(0, reprocess, batchSize)
	return stats, a.fail(err)
}

// ExtractMetadata runs the metadata pass with the configured extractor.
// Empty strategy and zero batchSize fall back to the configured values.
func (a *PhotosortApp) ExtractMetadata(ctx context.Context, sessionID int64, strategy string, batchSize, limit int) (*photosort.ExtractionStats, error) {
	opts, err := a.extractOptions(sessionID, strategy, batchSize, limit)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(fmt.Sprintf("session=%d strategy=%s batch_size=%d limit=%d", sessionID, opts.Strategy, opts.BatchSize, limit)); err != nil {
		return nil, err
	}
	stats, err := a.extract(ctx, opts)
	return stats, a.fail(err)
}

func (a *PhotosortApp) extractOptions(sessionID int64, strategy string, batchSize, limit int) (photosort.ExtractOptions, error) {
	if strategy == "" {
		strategy = a.cfg.Extractor.Strategy
	}
	s, err := photosort.ParseStrategy(strategy)
	if err != nil {
		return photosort.ExtractOptions{}, err
	}
	if batchSize <= 0 {
		batchSize = a.cfg.Extractor.BatchSize
	}
	return photosort.ExtractOptions{SessionID: sessionID, Strategy: s, BatchSize: batchSize, Limit: limit}, nil
}

func (a *PhotosortApp) extract(ctx context.Context, opts photosort.ExtractOptions) (*photosort.ExtractionStats, error) {
	extractor, err := metadata.NewExtractorFromConfig(ctx, a.cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("creating metadata extractor: %w", err)
	}
	return a.newService(extractor).ExtractMetadata(ctx, opts)
}

// Plan builds the destination plan of a session (0 for the latest completed one).
func (a *PhotosortApp) Plan(sessionID int64) (*photosort.PlanSummary, error) {
	if err := a.persistOperation(fmt.Sprintf("session=%d", sessionID)); err != nil {
		return nil, err
	}
	summary, err := a.service.Plan(sessionID)
	return summary, a.fail(err)
}

// Run scans rawPath and runs every following pass on the new session.
func (a *PhotosortApp) Run(ctx context.Context, rawPath string) (*RunResult, error) {
	root, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	opts, err := a.extractOptions(0, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(root.String()); err != nil {
		return nil, err
	}

	res := &RunResult{}
	if res.Session, err = a.service.Scan(root, false); err != nil {
		return res, a.fail(err)
	}
	if res.Session.Status != model.ScanStatusCompleted {
		return res, a.fail(fmt.Errorf("scan session %d ended with status %s", res.Session.ID, res.Session.Status))
	}
	if res.Resolve, err = a.service.ResolveDates(res.Session.ID, false, 0); err != nil {
		return res, a.fail(err)
	}
	opts.SessionID = res.Session.ID
	if res.Extraction, err = a.extract(ctx, opts); err != nil {
		return res, a.fail(err)
	}
	if res.Plan, err = a.service.Plan(res.Session.ID); err != nil {
		return res, a.fail(err)
	}
	return res, nil
}

// GetStatus returns every scan session with its counters.
func (a *PhotosortApp) GetStatus() ([]*photosort.SessionStatus, error) {
	return a.service.GetStatus()
}

// GetPlan returns the stored plan of a session.
func (a *PhotosortApp) GetPlan(sessionID int64, limit int) (*model.ScanSession, []*photosort.FolderPlanDetail, error) {
	return a.service.GetPlan(sessionID, limit)
}

// GetHistory returns the most recent operations.
func (a *PhotosortApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(limit)
}

// KeysInit generates the snapshot key pair, protecting the private key with passphrase.
func (a *PhotosortApp) KeysInit(passphrase string) error {
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("initializing keys: %w", err)
	}
	a.logger.Info("generated snapshot keys", "public_key", a.cfg.Encryption.PublicKeyPath)
	return nil
}

// RestoreSnapshot writes snapshot version (0 for the latest) to out, which
// must not exist. passphrase is only asked for when the snapshot is encrypted.
func (a *PhotosortApp) RestoreSnapshot(out string, version int64, passphrase func() (string, error)) (*photosort.SnapshotInfo, error) {
	if a.store == nil {
		return nil, fmt.Errorf("snapshots are disabled: set [snapshot] type in the config")
	}

	absOut, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	f, err := os.OpenFile(absOut, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	unlock := func() (photosort.DecryptionContext, error) {
		pw, err := passphrase()
		if err != nil {
			return nil, err
		}
		return a.encryptor.Unlock(pw)
	}

	info, err := photosort.RestoreSnapshot(a.store, version, f, unlock)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output file: %w", cerr)
	}
	if err != nil {
		os.Remove(absOut)
		return nil, err
	}
	a.logger.Info("restored snapshot", "version", info.Version, "encrypted", info.Encrypted, "out", absOut)
	return info, nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record and, when a
// snapshot store is configured, stores a copy of the catalog under the
// operation ID. For non-persisted operations: just closes the database.
func (a *PhotosortApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var tmpDir, tmpPath string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}

		if a.store != nil {
			dir, err := os.MkdirTemp("", "photosort-snapshot-*")
			if err != nil {
				keep(fmt.Errorf("creating temp dir for snapshot: %w", err))
			} else {
				tmpDir = dir
				tmpPath = filepath.Join(dir, database.CatalogFilename)
				if err := a.db.BackupTo(tmpPath); err != nil {
					keep(err)
					tmpPath = ""
				}
			}
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if tmpPath != "" {
		keep(a.storeSnapshot(tmpPath, a.op.ID))
	}
	if tmpDir != "" {
		os.RemoveAll(tmpDir)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// storeSnapshot puts the catalog copy at path into the snapshot store,
// encrypting it first when configured.
func (a *PhotosortApp) storeSnapshot(path string, version int64) error {
	encrypted := a.cfg.Snapshot.Encrypt
	if encrypted {
		if !a.encryptor.IsConfigured() {
			return fmt.Errorf("snapshot encryption is enabled but no keys exist: run `photosort keys init`")
		}
		encPath := path + ".age"
		if err := encryptFile(a.encryptor, path, encPath); err != nil {
			return err
		}
		path = encPath
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := a.store.Put(version, encrypted, f, info.Size()); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	return nil
}

func encryptFile(enc photosort.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}
