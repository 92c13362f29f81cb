package atomicconfig

import (
	"strconv"
	"time"
)

// This file implements the typed accessors over CatalogStore's raw
// get/put/drop/prefixScan: one pair of methods per fixed catalog key
// (keys.go), plus the cluster_/engine_/property_ family operations and
// the derived views (Locale, DateFormatter, DateTimeFormatter); the two
// formatters cache a parsed form of the stored strings.

func (s *Store) getStr(key string) (string, error) {
	data, ok, err := s.catalog.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	v, err := DecodeStringValue(key, data)
	if err != nil {
		return "", err
	}
	return derefOr(v, ""), nil
}

func (s *Store) setStr(key, value string) error {
	return s.catalog.Put(key, EncodeStringValue(strOrNil(value)))
}

func (s *Store) getInt(key string) (int32, error) {
	data, ok, err := s.catalog.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return DecodeIntValue(key, data)
}

func (s *Store) setInt(key string, value int32) error {
	return s.catalog.Put(key, EncodeIntValue(value))
}

// Fixed scalar fields, one pair of accessors per catalog key.

func (s *Store) Version() (int32, error) { return s.getInt(keyVersion) }
func (s *Store) SetVersion(v int32) error { return s.setInt(keyVersion, v) }

func (s *Store) SchemaRecordID() (string, error)        { return s.getStr(keySchemaRecordID) }
func (s *Store) SetSchemaRecordID(v string) error        { return s.setStr(keySchemaRecordID, v) }

func (s *Store) IndexManagerRecordID() (string, error) { return s.getStr(keyIndexManagerRecordID) }
func (s *Store) SetIndexManagerRecordID(v string) error {
	return s.setStr(keyIndexManagerRecordID, v)
}

func (s *Store) LocaleLanguage() (string, error) { return s.getStr(keyLocaleLanguage) }
func (s *Store) SetLocaleLanguage(v string) error {
	if err := s.setStr(keyLocaleLanguage, v); err != nil {
		return err
	}
	s.invalidateLocale()
	return nil
}

func (s *Store) LocaleCountry() (string, error) { return s.getStr(keyLocaleCountry) }
func (s *Store) SetLocaleCountry(v string) error {
	if err := s.setStr(keyLocaleCountry, v); err != nil {
		return err
	}
	s.invalidateLocale()
	return nil
}

func (s *Store) DateFormat() (string, error) { return s.getStr(keyDateFormat) }
func (s *Store) SetDateFormat(v string) error {
	if err := s.setStr(keyDateFormat, v); err != nil {
		return err
	}
	s.invalidateDateFormatters()
	return nil
}

func (s *Store) DateTimeFormat() (string, error) { return s.getStr(keyDateTimeFormat) }
func (s *Store) SetDateTimeFormat(v string) error {
	if err := s.setStr(keyDateTimeFormat, v); err != nil {
		return err
	}
	s.invalidateDateFormatters()
	return nil
}

func (s *Store) TimeZone() (string, error)    { return s.getStr(keyTimeZone) }
func (s *Store) SetTimeZone(v string) error {
	if err := s.setStr(keyTimeZone, v); err != nil {
		return err
	}
	s.invalidateDateFormatters()
	return nil
}

func (s *Store) Charset() (string, error)    { return s.getStr(keyCharset) }
func (s *Store) SetCharset(v string) error { return s.setStr(keyCharset, v) }

func (s *Store) ConflictStrategy() (string, error)    { return s.getStr(keyConflictStrategy) }
func (s *Store) SetConflictStrategy(v string) error { return s.setStr(keyConflictStrategy, v) }

func (s *Store) BinaryFormatVersion() (int32, error)    { return s.getInt(keyBinaryFormatVersion) }
func (s *Store) SetBinaryFormatVersion(v int32) error { return s.setInt(keyBinaryFormatVersion, v) }

func (s *Store) ClusterSelection() (string, error)    { return s.getStr(keyClusterSelection) }
func (s *Store) SetClusterSelection(v string) error { return s.setStr(keyClusterSelection, v) }

// MinimumClusters returns the stored value unchanged, including the 0
// sentinel ("automatic"); use ResolvedMinimumClusters for the effective
// count.
func (s *Store) MinimumClusters() (int32, error) { return s.getInt(keyMinimumClusters) }

func (s *Store) SetMinimumClusters(v int32) error {
	if v < 0 {
		return invalidArgf("minimumClusters", "must be >= 0 (0 means automatic), got %d", v)
	}
	return s.setInt(keyMinimumClusters, v)
}

// ResolvedMinimumClusters returns MinimumClusters(), or
// defaultMinimumClusters() when the stored value is the 0 "automatic"
// sentinel.
func (s *Store) ResolvedMinimumClusters() (int32, error) {
	v, err := s.MinimumClusters()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return defaultMinimumClusters(), nil
	}
	return v, nil
}

func (s *Store) RecordSerializer() (string, error)    { return s.getStr(keyRecordSerializer) }
func (s *Store) SetRecordSerializer(v string) error { return s.setStr(keyRecordSerializer, v) }

func (s *Store) RecordSerializerVersion() (int32, error) {
	return s.getInt(keyRecordSerializerVersion)
}
func (s *Store) SetRecordSerializerVersion(v int32) error {
	return s.setInt(keyRecordSerializerVersion, v)
}

func (s *Store) CreatedAtVersion() (string, error)    { return s.getStr(keyCreatedAtVersion) }
func (s *Store) SetCreatedAtVersion(v string) error { return s.setStr(keyCreatedAtVersion, v) }

func (s *Store) PageSize() (int32, error)    { return s.getInt(keyPageSize) }
func (s *Store) SetPageSize(v int32) error { return s.setInt(keyPageSize, v) }

func (s *Store) FreeListBoundary() (int32, error)    { return s.getInt(keyFreeListBoundary) }
func (s *Store) SetFreeListBoundary(v int32) error { return s.setInt(keyFreeListBoundary, v) }

func (s *Store) MaxKeySize() (int32, error)    { return s.getInt(keyMaxKeySize) }
func (s *Store) SetMaxKeySize(v int32) error { return s.setInt(keyMaxKeySize, v) }

// Locale resolves the (language, country) pair from the stored strings on
// every call, falling back to HostLocale() (with a logged error) if the
// stored value doesn't look like a real locale tag. Nothing is cached.
func (s *Store) Locale() (Locale, error) {
	lang, err := s.LocaleLanguage()
	if err != nil {
		return Locale{}, err
	}
	country, err := s.LocaleCountry()
	if err != nil {
		return Locale{}, err
	}
	return ResolveLocale(lang, country, s.logger), nil
}

func (s *Store) invalidateLocale() {
	// Locale() recomputes from the stored strings on every call; nothing
	// to invalidate, this exists so the Set* accessors above have a
	// single hook to call even though only the formatter cache is real.
}

// DateFormatter returns a formatter for the stored dateFormat pattern,
// bound to the stored timeZone, built once and cached until the pattern
// or time zone changes.
func (s *Store) DateFormatter() (*DateFormatter, error) {
	s.dfMu.Lock()
	defer s.dfMu.Unlock()
	if s.dateFormatter != nil {
		return s.dateFormatter, nil
	}
	pattern, err := s.DateFormat()
	if err != nil {
		return nil, err
	}
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	f, err := NewDateFormatter(pattern, loc)
	if err != nil {
		return nil, err
	}
	s.dateFormatter = f
	return f, nil
}

// DateTimeFormatter is DateFormatter's analogue for dateTimeFormat.
func (s *Store) DateTimeFormatter() (*DateFormatter, error) {
	s.dfMu.Lock()
	defer s.dfMu.Unlock()
	if s.dateTimeFormat != nil {
		return s.dateTimeFormat, nil
	}
	pattern, err := s.DateTimeFormat()
	if err != nil {
		return nil, err
	}
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	f, err := NewDateFormatter(pattern, loc)
	if err != nil {
		return nil, err
	}
	s.dateTimeFormat = f
	return f, nil
}

func (s *Store) invalidateDateFormatters() {
	s.dfMu.Lock()
	defer s.dfMu.Unlock()
	s.dateFormatter = nil
	s.dateTimeFormat = nil
}

func (s *Store) location() (*time.Location, error) {
	name, err := s.TimeZone()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		s.logger.Errorf("atomicconfig: unknown time zone %q, falling back to UTC: %v", name, err)
		return time.UTC, nil
	}
	return loc, nil
}

// Properties: the "property_<name>" family of arbitrary user strings.

func (s *Store) GetProperty(name string) (string, bool, error) {
	data, ok, err := s.catalog.Get(propertyKey(name))
	if err != nil || !ok {
		return "", ok, err
	}
	v, err := DecodeStringValue(name, data)
	if err != nil {
		return "", false, err
	}
	return derefOr(v, ""), true, nil
}

func (s *Store) SetProperty(name, value string) error {
	if name == "" {
		return invalidArgf("property name", "must not be empty")
	}
	return s.catalog.Put(propertyKey(name), EncodeStringValue(&value))
}

func (s *Store) RemoveProperty(name string) (bool, error) {
	return s.catalog.Drop(propertyKey(name))
}

// ClearProperties removes every stored user property in one atomic
// operation, matching the original's collect-then-bulk-drop behavior.
func (s *Store) ClearProperties() error {
	return s.catalog.Clear(propertyKeyPrefix)
}

func (s *Store) GetProperties() (map[string]string, error) {
	entries, err := s.catalog.PrefixScan(propertyKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Key[len(propertyKeyPrefix):]
		v, err := DecodeStringValue(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out[name] = derefOr(v, "")
	}
	return out, nil
}

// Clusters: the "cluster_<id>" family.

func (s *Store) GetCluster(id int) (ClusterDescriptor, bool, error) {
	data, ok, err := s.catalog.Get(clusterKey(id))
	if err != nil || !ok {
		return ClusterDescriptor{}, ok, err
	}
	c, err := decodeClusterDescriptor(id, data)
	return c, true, err
}

func (s *Store) SetCluster(c ClusterDescriptor) error {
	if c.ID < 0 {
		return invalidArgf("cluster id", "must be >= 0, got %d", c.ID)
	}
	if c.Status == "" {
		c.Status = ClusterStatusOnline
	}
	if c.DataSegmentID == 0 {
		c.DataSegmentID = -1
	}
	if c.RecordOverflowGrowFactor == 0 {
		c.RecordOverflowGrowFactor = defaultRecordGrowFactor
	}
	if c.RecordGrowFactor == 0 {
		c.RecordGrowFactor = defaultRecordGrowFactor
	}
	return s.catalog.Put(clusterKey(c.ID), encodeClusterDescriptor(c))
}

func (s *Store) DropCluster(id int) (bool, error) {
	return s.catalog.Drop(clusterKey(id))
}

// SetClusterStatus patches only the Status field of an existing cluster
// descriptor, read-modify-write, and is a no-op if the cluster was never
// registered.
func (s *Store) SetClusterStatus(id int, status ClusterStatus) error {
	c, ok, err := s.GetCluster(id)
	if err != nil || !ok {
		return err
	}
	c.Status = status
	return s.SetCluster(c)
}

// GetClusters returns a sparse slice indexed by cluster id: entries for
// ids that were never registered, or were dropped, are nil. The slice
// length is one past the highest registered id, matching the original's
// null-padded materialization of a logically sparse id space.
func (s *Store) GetClusters() ([]*ClusterDescriptor, error) {
	entries, err := s.catalog.PrefixScan(clusterKeyPrefix)
	if err != nil {
		return nil, err
	}
	maxID := -1
	descs := make([]ClusterDescriptor, 0, len(entries))
	for _, e := range entries {
		id, err := parseSuffixInt(e.Key, clusterKeyPrefix)
		if err != nil {
			return nil, err
		}
		c, err := decodeClusterDescriptor(id, e.Value)
		if err != nil {
			return nil, err
		}
		descs = append(descs, c)
		if id > maxID {
			maxID = id
		}
	}
	out := make([]*ClusterDescriptor, maxID+1)
	for i := range descs {
		out[descs[i].ID] = &descs[i]
	}
	return out, nil
}

// Index engines: the "engine_<name>" family.

func (s *Store) GetIndexEngine(name string) (IndexEngineDescriptor, bool, error) {
	data, ok, err := s.catalog.Get(engineKey(name))
	if err != nil || !ok {
		return IndexEngineDescriptor{}, ok, err
	}
	e, err := decodeIndexEngineDescriptor(name, data)
	return e, true, err
}

// AddIndexEngine registers e unless an engine with the same name already
// exists, in which case it logs a warning and leaves the existing entry
// untouched — it never silently overwrites one engine's configuration
// with another's.
func (s *Store) AddIndexEngine(e IndexEngineDescriptor) error {
	if e.Name == "" {
		return invalidArgf("index engine name", "must not be empty")
	}
	_, exists, err := s.GetIndexEngine(e.Name)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Warnf("atomicconfig: index engine %q already exists, not overwriting", e.Name)
		return nil
	}
	return s.catalog.Put(engineKey(e.Name), encodeIndexEngineDescriptor(e))
}

// DeleteIndexEngine removes the named engine descriptor, mirroring
// RemoveProperty/DropCluster's single-key drop shape.
func (s *Store) DeleteIndexEngine(name string) (bool, error) {
	return s.catalog.Drop(engineKey(name))
}

func (s *Store) IndexEngines() ([]IndexEngineDescriptor, error) {
	entries, err := s.catalog.PrefixScan(engineKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]IndexEngineDescriptor, 0, len(entries))
	for _, e := range entries {
		name := e.Key[len(engineKeyPrefix):]
		desc, err := decodeIndexEngineDescriptor(name, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// Configuration: the free-form "configuration" blob, resolved against the
// GlobalCatalog supplied at Create/Load time.

func (s *Store) GetConfiguration() (map[string]string, error) {
	data, ok, err := s.catalog.Get(keyConfiguration)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}
	return decodeConfigurationBlob(data, s.global, s.logger)
}

// SetConfigurationProperty sets one key in the configuration blob,
// read-modify-write, so concurrent SetConfigurationProperty calls must go
// through CatalogStore's write lock serially (which Put already does) —
// there is no finer-grained locking of individual configuration keys.
func (s *Store) SetConfigurationProperty(key, value string) error {
	ctx, err := s.GetConfiguration()
	if err != nil {
		return err
	}
	ctx[key] = value
	return s.catalog.Put(keyConfiguration, encodeConfigurationBlob(ctx, s.global, s.logger))
}

func (s *Store) ContextInt(key string, fallback int32) (int32, error) {
	ctx, err := s.GetConfiguration()
	if err != nil {
		return 0, err
	}
	raw, ok := ctx[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback, nil
	}
	return int32(v), nil
}

func (s *Store) ContextBool(key string, fallback bool) (bool, error) {
	ctx, err := s.GetConfiguration()
	if err != nil {
		return false, err
	}
	raw, ok := ctx[key]
	if !ok {
		return fallback, nil
	}
	return raw == "true", nil
}

// Snapshot flattens the entire catalog into a CatalogSnapshot, for
// TextSerializer or Dump.
func (s *Store) Snapshot() (CatalogSnapshot, error) {
	var snap CatalogSnapshot
	var err error
	if snap.Version, err = s.Version(); err != nil {
		return snap, err
	}
	if snap.SchemaRecordID, err = s.SchemaRecordID(); err != nil {
		return snap, err
	}
	if snap.IndexManagerRecordID, err = s.IndexManagerRecordID(); err != nil {
		return snap, err
	}
	if snap.LocaleLanguage, err = s.LocaleLanguage(); err != nil {
		return snap, err
	}
	if snap.LocaleCountry, err = s.LocaleCountry(); err != nil {
		return snap, err
	}
	if snap.DateFormat, err = s.DateFormat(); err != nil {
		return snap, err
	}
	if snap.DateTimeFormat, err = s.DateTimeFormat(); err != nil {
		return snap, err
	}
	if snap.TimeZone, err = s.TimeZone(); err != nil {
		return snap, err
	}
	if snap.Charset, err = s.Charset(); err != nil {
		return snap, err
	}
	if snap.ConflictStrategy, err = s.ConflictStrategy(); err != nil {
		return snap, err
	}
	if snap.RecordSerializer, err = s.RecordSerializer(); err != nil {
		return snap, err
	}
	if snap.RecordSerializerVersion, err = s.RecordSerializerVersion(); err != nil {
		return snap, err
	}
	if snap.ClusterSelection, err = s.ClusterSelection(); err != nil {
		return snap, err
	}
	if snap.MinimumClusters, err = s.MinimumClusters(); err != nil {
		return snap, err
	}
	if snap.CreatedAtVersion, err = s.CreatedAtVersion(); err != nil {
		return snap, err
	}
	if snap.PageSize, err = s.PageSize(); err != nil {
		return snap, err
	}
	if snap.FreeListBoundary, err = s.FreeListBoundary(); err != nil {
		return snap, err
	}
	if snap.MaxKeySize, err = s.MaxKeySize(); err != nil {
		return snap, err
	}
	if snap.BinaryFormatVersion, err = s.BinaryFormatVersion(); err != nil {
		return snap, err
	}
	if snap.Clusters, err = s.GetClusters(); err != nil {
		return snap, err
	}
	if snap.Properties, err = s.GetProperties(); err != nil {
		return snap, err
	}
	if snap.Engines, err = s.IndexEngines(); err != nil {
		return snap, err
	}
	if snap.Context, err = s.GetConfiguration(); err != nil {
		return snap, err
	}
	return snap, nil
}

// SerializeText renders the catalog in the legacy pipe-delimited wire
// format for the given network version.
func (s *Store) SerializeText(networkVersion int32) (string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return TextSerializer{}.Serialize(snap, networkVersion), nil
}

// StrictSQL reports whether this catalog requires strict SQL parsing.
// Always true: every catalog this package can create or load requires it,
// there is no lenient-SQL storage format to fall back to.
func (s *Store) StrictSQL() bool { return true }
