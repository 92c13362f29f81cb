package atomicconfig

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// Options configures Store.Create and Store.Load, mirroring the teacher's
// db.go Open(path, schema, Options) constructor.
type Options struct {
	// Logger receives warnings and errors the store would otherwise have
	// no way to surface (an unrecognized configuration property, a
	// duplicate index engine name, ...). Defaults to a slog-backed logger.
	Logger Logger

	// GlobalCatalog resolves configuration-blob keys to their hidden/typed
	// metadata. Defaults to NewDefaultGlobalCatalog().
	GlobalCatalog GlobalCatalog

	// IsTesting relaxes bbolt's fsync behavior the way the teacher's
	// Options.IsTesting does, trading durability for speed in tests that
	// exercise real files.
	IsTesting bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = NewSlogLogger(nil)
	}
	if o.GlobalCatalog == nil {
		o.GlobalCatalog = NewDefaultGlobalCatalog()
	}
	return o
}

// Store is the catalog's public entry point: lifecycle (Create/Load/
// Close/Delete) plus the typed accessors in configfacade.go.
type Store struct {
	catalog *CatalogStore
	global  GlobalCatalog
	logger  Logger

	clusterStorage storage
	indexStorage   storage

	basePath string // "" for an in-memory store, which Delete refuses

	dfMu           sync.Mutex
	dateFormatter  *DateFormatter
	dateTimeFormat *DateFormatter
}

func boltOptions(opts Options) *bbolt.Options {
	bo := &bbolt.Options{Timeout: time.Second}
	if opts.IsTesting {
		bo.NoSync = true
	}
	return bo
}

// clusterFilePath and indexFilePath name the two bbolt databases backing
// one catalog, loosely echoing the four-file ".cd/.cm/.bd/.nd" legacy
// layout this package collapses into two (bbolt needs only one file per
// logical store, so the record-cluster and cluster-map pair become one
// ".cd" file, and the btree-index and node-index pair become one ".bd"
// file).
func clusterFilePath(baseDir, baseName string) string { return baseDir + "/" + baseName + ".cd" }
func indexFilePath(baseDir, baseName string) string   { return baseDir + "/" + baseName + ".bd" }

// Create initializes a brand new catalog at baseDir/baseName.{cd,bd} and
// writes the defaults listed in populateDefaults. schemaRecordId,
// indexMgrRecordId, conflictStrategy, clusterSelection and
// recordSerializer get no default and read back as empty strings.
func Create(baseDir, baseName string, opts Options) (*Store, error) {
	opts = opts.withDefaults()

	clusterPath := clusterFilePath(baseDir, baseName)
	indexPath := indexFilePath(baseDir, baseName)
	if _, err := os.Stat(clusterPath); err == nil {
		return nil, ErrAlreadyExists
	}

	cbdb, err := bbolt.Open(clusterPath, 0o600, boltOptions(opts))
	if err != nil {
		return nil, storageErrf("create", "", err)
	}
	ibdb, err := bbolt.Open(indexPath, 0o600, boltOptions(opts))
	if err != nil {
		_ = cbdb.Close()
		return nil, storageErrf("create", "", err)
	}

	s := newStore(newBoltStorage(cbdb), newBoltStorage(ibdb), opts)
	s.basePath = baseDir + "/" + baseName
	if err := s.catalog.create(); err != nil {
		_ = cbdb.Close()
		_ = ibdb.Close()
		return nil, err
	}
	if err := s.populateDefaults(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Load opens a catalog previously created at baseDir/baseName. It fails if
// either of the two files is missing.
func Load(baseDir, baseName string, opts Options) (*Store, error) {
	opts = opts.withDefaults()

	clusterPath := clusterFilePath(baseDir, baseName)
	indexPath := indexFilePath(baseDir, baseName)
	for _, p := range []string{clusterPath, indexPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, storageErrf("load", "", err)
		}
	}

	cbdb, err := bbolt.Open(clusterPath, 0o600, boltOptions(opts))
	if err != nil {
		return nil, storageErrf("load", "", err)
	}
	ibdb, err := bbolt.Open(indexPath, 0o600, boltOptions(opts))
	if err != nil {
		_ = cbdb.Close()
		return nil, storageErrf("load", "", err)
	}

	s := newStore(newBoltStorage(cbdb), newBoltStorage(ibdb), opts)
	s.basePath = baseDir + "/" + baseName
	s.catalog.open()
	return s, nil
}

// NewInMemory creates a catalog backed by transient in-memory storage,
// for tests that would rather not touch disk. Delete is unavailable on
// the result (there is nothing on disk to remove).
func NewInMemory(opts Options) (*Store, error) {
	opts = opts.withDefaults()
	s := newStore(newMemStorage(), newMemStorage(), opts)
	if err := s.catalog.create(); err != nil {
		return nil, err
	}
	if err := s.populateDefaults(); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(clusterStorage, indexStorage storage, opts Options) *Store {
	return &Store{
		catalog:        newCatalogStore(clusterStorage, indexStorage, opts.Logger),
		global:         opts.GlobalCatalog,
		logger:         opts.Logger,
		clusterStorage: clusterStorage,
		indexStorage:   indexStorage,
	}
}

// defaultMinimumClusters mirrors the original's auto-sizing: one cluster
// per CPU, capped at 64, used whenever the stored minimumClusters is 0
// ("automatic").
func defaultMinimumClusters() int32 {
	n := runtime.NumCPU()
	if n > 64 {
		n = 64
	}
	if n < 1 {
		n = 1
	}
	return int32(n)
}

func (s *Store) populateDefaults() error {
	host := HostLocale()
	defaults := map[string][]byte{
		keyVersion:                 EncodeIntValue(0),
		keyLocaleLanguage:          EncodeStringValue(&host.Language),
		keyLocaleCountry:           EncodeStringValue(&host.Country),
		keyDateFormat:              EncodeStringValue(strOrNil("yyyy-MM-dd")),
		keyDateTimeFormat:          EncodeStringValue(strOrNil("yyyy-MM-dd HH:mm:ss")),
		keyTimeZone:                EncodeStringValue(strOrNil("UTC")),
		keyCharset:                 EncodeStringValue(strOrNil("UTF-8")),
		keyMinimumClusters:         EncodeIntValue(0), // 0 == automatic
		keyRecordSerializerVersion: EncodeIntValue(0),
		keyPageSize:                EncodeIntValue(-1),
		keyFreeListBoundary:        EncodeIntValue(-1),
		keyMaxKeySize:              EncodeIntValue(-1),
		keyBinaryFormatVersion:     EncodeIntValue(0),
		keyCreatedAtVersion:        EncodeStringValue(strOrNil("")),
		keyConfiguration:           encodeConfigurationBlob(nil, s.global, s.logger),
	}
	for k, v := range defaults {
		if err := s.catalog.Put(k, v); err != nil {
			return fmt.Errorf("populating default %q: %w", k, err)
		}
	}
	return nil
}

// Close releases the underlying storage. It does not delete anything on
// disk.
func (s *Store) Close() error {
	s.catalog.close()
	errCluster := s.clusterStorage.Close()
	errIndex := s.indexStorage.Close()
	if errCluster != nil {
		return errCluster
	}
	return errIndex
}

// Delete removes the catalog's files from disk. The store must already
// be closed, and must have been created via Create/Load (not
// NewInMemory).
func (s *Store) Delete() error {
	if s.basePath == "" {
		return invalidArgf("store", "Delete is not available on an in-memory store")
	}
	errCluster := os.Remove(s.basePath + ".cd")
	errIndex := os.Remove(s.basePath + ".bd")
	if errCluster != nil {
		return errCluster
	}
	return errIndex
}

// SetUpdateListener installs f to run after every successful write to the
// catalog. A nil f removes the listener.
func (s *Store) SetUpdateListener(f func(key string)) {
	s.catalog.SetListener(f)
}

// Directory reports the on-disk directory backing this catalog, or "" for
// an in-memory store — mirroring the original's null result for storage
// that isn't backed by local paginated files.
func (s *Store) Directory() string {
	if s.basePath == "" {
		return ""
	}
	i := len(s.basePath)
	for i > 0 && s.basePath[i-1] != '/' {
		i--
	}
	if i == 0 {
		return "."
	}
	return s.basePath[:i-1]
}
