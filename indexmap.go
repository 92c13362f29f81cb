package atomicconfig

import "encoding/binary"

// RecordRef is the stable position RecordCluster issues for a stored
// record; IndexMap values are nothing but a RecordRef's 8 raw bytes.
type RecordRef uint64

const indexBucketName = "config_index"

// IndexMap is the ordered key -> RecordRef index backing CatalogStore. It
// is grounded on the teacher's opkv.go flat-bucket get/put pattern,
// narrowed to this one fixed-width value type, plus scan.go's RawRange
// machinery for prefix iteration.
type IndexMap struct{}

func newIndexMap() *IndexMap { return &IndexMap{} }

func (im *IndexMap) bucket(tx storageTx) storageBucket {
	return tx.Bucket(indexBucketName, "")
}

func (im *IndexMap) ensureBucket(tx storageTx) (storageBucket, error) {
	return tx.CreateBucket(indexBucketName, "")
}

func (im *IndexMap) Get(tx storageTx, key string) (RecordRef, bool, error) {
	b := im.bucket(tx)
	if b == nil {
		return 0, false, nil
	}
	v := b.Get([]byte(key))
	if v == nil {
		return 0, false, nil
	}
	if len(v) != 8 {
		return 0, false, corruptf(key, 0, "index entry has %d bytes, expected 8", len(v))
	}
	return RecordRef(binary.BigEndian.Uint64(v)), true, nil
}

func (im *IndexMap) Put(tx storageTx, key string, ref RecordRef) error {
	b, err := im.ensureBucket(tx)
	if err != nil {
		return storageErrf("index.put", key, err)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ref))
	if err := b.Put([]byte(key), buf[:]); err != nil {
		return storageErrf("index.put", key, err)
	}
	return nil
}

func (im *IndexMap) Remove(tx storageTx, key string) error {
	b := im.bucket(tx)
	if b == nil {
		return nil
	}
	if err := b.Delete([]byte(key)); err != nil {
		return storageErrf("index.remove", key, err)
	}
	return nil
}

// PrefixScan returns every (key, ref) pair whose key starts with prefix,
// in ascending key order.
func (im *IndexMap) PrefixScan(tx storageTx, prefix string) ([]indexEntry, error) {
	b := im.bucket(tx)
	if b == nil {
		return nil, nil
	}
	rang := RawPrefix([]byte(prefix))
	cur := rang.newCursor(b.Cursor(), noopSlog)
	var out []indexEntry
	for cur.Next() {
		k, v := cur.Key(), cur.Value()
		if len(v) != 8 {
			return nil, corruptf(string(k), 0, "index entry has %d bytes, expected 8", len(v))
		}
		out = append(out, indexEntry{Key: string(k), Ref: RecordRef(binary.BigEndian.Uint64(v))})
	}
	return out, nil
}

type indexEntry struct {
	Key string
	Ref RecordRef
}
