package atomicconfig

import "github.com/vmihailenco/msgpack/v5"

// dumpSnapshot is the shape Dump serializes; a plain mirror of
// CatalogSnapshot since CatalogSnapshot's pointer-sparse Clusters slice
// round-trips fine through msgpack as-is, but keeping a dedicated type
// here means a future CatalogSnapshot field doesn't silently change the
// dump format.
type dumpSnapshot struct {
	Version                 int32
	SchemaRecordID          string
	IndexManagerRecordID    string
	LocaleLanguage          string
	LocaleCountry           string
	DateFormat              string
	DateTimeFormat          string
	TimeZone                string
	Charset                 string
	ClusterSelection        string
	MinimumClusters         int32
	ConflictStrategy        string
	RecordSerializer        string
	RecordSerializerVersion int32
	CreatedAtVersion        string
	PageSize                int32
	FreeListBoundary        int32
	MaxKeySize              int32
	BinaryFormatVersion     int32
	Clusters                []*ClusterDescriptor
	Properties              map[string]string
	IndexEngines            []IndexEngineDescriptor
	Configuration           map[string]string
}

// Dump renders the whole catalog as msgpack, for operator tooling and
// support bundles — never used by the catalog's own load/save path, which
// always goes through the fixed-layout codecs in valuecodec.go and its
// siblings.
func (s *Store) Dump() ([]byte, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	d := dumpSnapshot{
		Version:                 snap.Version,
		SchemaRecordID:          snap.SchemaRecordID,
		IndexManagerRecordID:    snap.IndexManagerRecordID,
		LocaleLanguage:          snap.LocaleLanguage,
		LocaleCountry:           snap.LocaleCountry,
		DateFormat:              snap.DateFormat,
		DateTimeFormat:          snap.DateTimeFormat,
		TimeZone:                snap.TimeZone,
		Charset:                 snap.Charset,
		ClusterSelection:        snap.ClusterSelection,
		MinimumClusters:         snap.MinimumClusters,
		ConflictStrategy:        snap.ConflictStrategy,
		RecordSerializer:        snap.RecordSerializer,
		RecordSerializerVersion: snap.RecordSerializerVersion,
		CreatedAtVersion:        snap.CreatedAtVersion,
		PageSize:                snap.PageSize,
		FreeListBoundary:        snap.FreeListBoundary,
		MaxKeySize:              snap.MaxKeySize,
		BinaryFormatVersion:     snap.BinaryFormatVersion,
		Clusters:                snap.Clusters,
		Properties:              snap.Properties,
		IndexEngines:            snap.Engines,
		Configuration:           snap.Context,
	}
	return msgpack.Marshal(d)
}
