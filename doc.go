/*
Package atomicconfig implements the atomic, persistent storage-configuration
catalog of a paginated database engine: the per-database record identifiers
for schema and index-manager roots, locale and date/time defaults, cluster
(partition) descriptors, secondary-index engine descriptors, arbitrary user
properties, and a handful of tuning constants.

We implement:

1. A keyed persistent map (CatalogStore) whose values are fixed-layout
binary blobs, layered on an ordered key→record-position index (IndexMap)
and a paginated record store (RecordCluster), each its own bbolt database,
coordinated by an atomic-operation manager (TxnMgr).

2. Typed accessors (Store) over the fixed catalog key set, with derived
views (resolved locale, date/time formatters) and a single update listener.

3. Bit-exact binary codecs for every value family, plus a pipe-delimited
text serialization of the whole catalog for legacy wire compatibility.

# Technical Details

**Two stores, one atomic operation.**
The index (key → record position) and the record cluster (position →
bytes) are independent bbolt databases. TxnMgr's AtomicOp begins a
writable transaction on each and commits the record cluster first, then
the index — a crash between the two commits can only leave a record with
no index entry (collectible garbage), never a dangling index entry
pointing at a missing record.

**Key namespace.**
Single-field keys use their plain name ("version", "schemaRecordId", ...).
Group keys use a reserved prefix: "cluster_<id>", "engine_<name>",
"property_<name>". Ascending iteration over a prefix enumerates a family.

**Value encoding.**
Every key's value format is fixed by its key name. Strings are a 1-byte
null flag, optionally followed by a 4-byte big-endian length and UTF-16
content. Integers are 4 raw big-endian bytes. Structured values (cluster
and index-engine descriptors, the configuration blob) are a fixed
concatenation of these primitives — see valuecodec.go and its siblings.
*/
package atomicconfig
