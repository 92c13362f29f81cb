package atomicconfig

import (
	"sort"
	"strconv"
	"strings"
)

// Catalog key prefixes. Keys under these prefixes carry the id/name of the
// cluster, engine or property they describe; a prefix scan enumerates a
// whole family in ascending key order.
const (
	clusterKeyPrefix  = "cluster_"
	engineKeyPrefix   = "engine_"
	propertyKeyPrefix = "property_"
)

// Single-field catalog keys, one per Store accessor in configfacade.go.
const (
	keyVersion                 = "version"
	keySchemaRecordID          = "schemaRecordId"
	keyIndexManagerRecordID    = "indexMgrRecordId"
	keyLocaleLanguage          = "localeLanguage"
	keyLocaleCountry           = "localeCountry"
	keyDateFormat              = "dateFormat"
	keyDateTimeFormat          = "dateTimeFormat"
	keyTimeZone                = "timeZone"
	keyCharset                 = "charset"
	keyConflictStrategy        = "conflictStrategy"
	keyBinaryFormatVersion     = "binaryFormatVersion"
	keyClusterSelection        = "clusterSelection"
	keyMinimumClusters         = "minimumClusters"
	keyRecordSerializer        = "recordSerializer"
	keyRecordSerializerVersion = "recordSerializerVersion"
	keyConfiguration           = "configuration"
	keyCreatedAtVersion        = "createdAtVersion"
	keyPageSize                = "pageSize"
	keyFreeListBoundary        = "freeListBoundary"
	keyMaxKeySize              = "maxKeySize"
)

func propertyKey(name string) string { return propertyKeyPrefix + name }

// parseSuffixInt parses the integer id suffix of a prefixed key, e.g.
// parseSuffixInt("cluster_12", clusterKeyPrefix) == 12.
func parseSuffixInt(key, prefix string) (int, error) {
	suffix := strings.TrimPrefix(key, prefix)
	v, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, invalidArgf("key", "expected %q to have an integer suffix after %q", key, prefix)
	}
	return v, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
