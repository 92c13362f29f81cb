package atomicconfig

// ValueType is the typed interpretation a GlobalCatalog entry declares for
// a context key. The configuration blob always carries raw strings and is
// decoded into strings; nothing in this package reads ValueType.
// Store.ContextInt and Store.ContextBool parse a value as the type the
// caller asks for, whatever type the entry declares.
type ValueType int

const (
	ValueTypeString ValueType = iota
	ValueTypeInteger
	ValueTypeBoolean
)

// CatalogKeyInfo is what GlobalCatalog knows about one context key: its
// declared type, and whether its value must never be persisted.
type CatalogKeyInfo struct {
	Key    string
	Type   ValueType
	Hidden bool
}

// GlobalCatalog resolves a free-form context key (one outside the fixed
// catalog key set — see keys.go) to the metadata the configuration-blob
// codec needs: whether the value is hidden (serialized as null) and, for
// a caller that wants the typed form, what type it is.
//
// A production engine has a single, compiled-in registry of every setting
// it understands; GlobalCatalog is an interface here, rather than a fixed
// map, purely so tests can substitute a short-lived registry without
// depending on the real one's contents.
type GlobalCatalog interface {
	FindByKey(key string) (CatalogKeyInfo, bool)
}

type staticGlobalCatalog struct {
	entries map[string]CatalogKeyInfo
}

// NewDefaultGlobalCatalog returns the GlobalCatalog Store.Create/Load use
// when Options.GlobalCatalog is nil: a small registry of the
// general-purpose settings a catalog's "configuration" entry commonly
// carries, including one deliberately hidden key to exercise the
// null-on-write path.
func NewDefaultGlobalCatalog() GlobalCatalog {
	entries := map[string]CatalogKeyInfo{
		"storage.cluster.minimumClusters": {Key: "storage.cluster.minimumClusters", Type: ValueTypeInteger},
		"db.validation":                   {Key: "db.validation", Type: ValueTypeBoolean},
		"storage.wal.enabled":             {Key: "storage.wal.enabled", Type: ValueTypeBoolean},
		"storage.encryptionKey":           {Key: "storage.encryptionKey", Type: ValueTypeString, Hidden: true},
	}
	return &staticGlobalCatalog{entries: entries}
}

func (c *staticGlobalCatalog) FindByKey(key string) (CatalogKeyInfo, bool) {
	info, ok := c.entries[key]
	return info, ok
}
