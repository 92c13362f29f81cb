package atomicconfig

import "encoding/binary"

const (
	recordBucketName = "config_records"
	// recordMetaKey stores the next unassigned RecordRef as 8 raw
	// big-endian bytes. It can never collide with a record key: record
	// keys are always exactly 8 bytes (a RecordRef), this key is 5.
	recordMetaKey = "\x00next"
)

// RecordCluster is the paginated append-store backing CatalogStore: each
// record occupies a monotonically increasing position (RecordRef) that is
// never reused, even after the record is deleted, so IndexMap entries
// written before a delete can never silently start pointing at an
// unrelated later record. It is grounded on the teacher's opkv.go
// get/put pattern, adapted from a string-keyed bucket to a
// position-keyed one with its own counter.
type RecordCluster struct{}

func newRecordCluster() *RecordCluster { return &RecordCluster{} }

func (rc *RecordCluster) bucket(tx storageTx) storageBucket {
	return tx.Bucket(recordBucketName, "")
}

func (rc *RecordCluster) ensureBucket(tx storageTx) (storageBucket, error) {
	return tx.CreateBucket(recordBucketName, "")
}

func positionKey(pos uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, pos)
	return buf
}

func (rc *RecordCluster) nextPosition(b storageBucket) uint64 {
	v := b.Get([]byte(recordMetaKey))
	if v == nil {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func (rc *RecordCluster) storeNextPosition(b storageBucket, next uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], next)
	return b.Put([]byte(recordMetaKey), buf[:])
}

// CreateRecord appends data as a new record and returns its position.
func (rc *RecordCluster) CreateRecord(tx storageTx, data []byte) (RecordRef, error) {
	b, err := rc.ensureBucket(tx)
	if err != nil {
		return 0, storageErrf("cluster.create", "", err)
	}
	pos := rc.nextPosition(b)
	if err := b.Put(positionKey(pos), data); err != nil {
		return 0, storageErrf("cluster.create", "", err)
	}
	if err := rc.storeNextPosition(b, pos+1); err != nil {
		return 0, storageErrf("cluster.create", "", err)
	}
	return RecordRef(pos), nil
}

// UpdateRecord overwrites the record at ref; ref must have come from a
// prior CreateRecord.
func (rc *RecordCluster) UpdateRecord(tx storageTx, ref RecordRef, data []byte) error {
	b := rc.bucket(tx)
	if b == nil {
		return storageErrf("cluster.update", "", ErrBucketNotFound)
	}
	if err := b.Put(positionKey(uint64(ref)), data); err != nil {
		return storageErrf("cluster.update", "", err)
	}
	return nil
}

func (rc *RecordCluster) DeleteRecord(tx storageTx, ref RecordRef) error {
	b := rc.bucket(tx)
	if b == nil {
		return nil
	}
	if err := b.Delete(positionKey(uint64(ref))); err != nil {
		return storageErrf("cluster.delete", "", err)
	}
	return nil
}

func (rc *RecordCluster) ReadRecord(tx storageTx, ref RecordRef) ([]byte, bool, error) {
	b := rc.bucket(tx)
	if b == nil {
		return nil, false, nil
	}
	v := b.Get(positionKey(uint64(ref)))
	if v == nil {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}
