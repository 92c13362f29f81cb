package atomicconfig

import "sync"

// dbConfigScope is the atomic-operation name every CatalogStore mutation
// runs under; it names a scope, not a database, and exists purely so
// storage-level tracing can tell which kind of operation produced a given
// pair of transactions.
const dbConfigScope = "dbConfig"

// CatalogStore is the transactional key -> []byte map composed from
// IndexMap and RecordCluster. It is the thing Store's typed accessors
// (configfacade.go) sit on top of. Concurrency follows a classic
// readers/writer lock: any number of concurrent get/prefixScan calls, at
// most one in-flight put/drop/clear, never nested.
type CatalogStore struct {
	mu sync.RWMutex

	clusterStorage storage
	indexStorage   storage
	txnMgr         *TxnMgr
	index          *IndexMap
	records        *RecordCluster

	logger   Logger
	listener func(key string)

	opened bool
}

func newCatalogStore(clusterStorage, indexStorage storage, logger Logger) *CatalogStore {
	return &CatalogStore{
		clusterStorage: clusterStorage,
		indexStorage:   indexStorage,
		txnMgr:         newTxnMgr(clusterStorage, indexStorage),
		index:          newIndexMap(),
		records:        newRecordCluster(),
		logger:         logger,
	}
}

// SetListener installs f to be invoked after every successful Put, once
// the atomic operation has committed and the write lock has been
// released, so f may read the catalog back. A nil f removes the listener.
// Because the call happens after commit, a panic or error from f never
// rolls back the write that triggered it.
func (cs *CatalogStore) SetListener(f func(key string)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listener = f
}

// create initializes empty index and record bucket structures. It does
// not wrap the two CreateBucket calls in an AtomicOp: there is nothing yet
// to roll back to, matching the original's unguarded create().
func (cs *CatalogStore) create() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ctx, err := cs.clusterStorage.BeginTx(true)
	if err != nil {
		return storageErrf("create", "", err)
	}
	if _, err := cs.records.ensureBucket(ctx); err != nil {
		_ = ctx.Rollback()
		return storageErrf("create", "", err)
	}
	if err := ctx.Commit(); err != nil {
		return storageErrf("create", "", err)
	}

	itx, err := cs.indexStorage.BeginTx(true)
	if err != nil {
		return storageErrf("create", "", err)
	}
	if _, err := cs.index.ensureBucket(itx); err != nil {
		_ = itx.Rollback()
		return storageErrf("create", "", err)
	}
	if err := itx.Commit(); err != nil {
		return storageErrf("create", "", err)
	}

	cs.opened = true
	return nil
}

func (cs *CatalogStore) open() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.opened = true
}

func (cs *CatalogStore) close() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.opened = false
}

func (cs *CatalogStore) checkOpen() error {
	if !cs.opened {
		return ErrNotOpen
	}
	return nil
}

// Get returns the current value for key, or ok==false if it has never
// been set. It takes two independent read transactions (index, then
// cluster), not one atomic operation; the read lock held for the whole
// call keeps any Put, Drop or Clear from committing between the two.
func (cs *CatalogStore) Get(key string) (value []byte, ok bool, err error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if err := cs.checkOpen(); err != nil {
		return nil, false, err
	}

	itx, err := cs.indexStorage.BeginTx(false)
	if err != nil {
		return nil, false, storageErrf("get", key, err)
	}
	defer itx.Rollback()
	ref, found, err := cs.index.Get(itx, key)
	if err != nil || !found {
		return nil, false, err
	}

	ctx, err := cs.clusterStorage.BeginTx(false)
	if err != nil {
		return nil, false, storageErrf("get", key, err)
	}
	defer ctx.Rollback()
	data, found, err := cs.records.ReadRecord(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, corruptf(key, 0, "index entry refers to missing record %d", ref)
	}
	return data, true, nil
}

// Put stores value under key, creating a new record or overwriting the
// existing one, atomically with the index update.
func (cs *CatalogStore) Put(key string, value []byte) error {
	cs.mu.Lock()
	locked := true
	defer func() {
		if locked {
			cs.mu.Unlock()
		}
	}()
	if err := cs.checkOpen(); err != nil {
		return err
	}

	err := cs.txnMgr.Atomic(dbConfigScope, func(op *AtomicOp) error {
		ref, found, err := cs.index.Get(op.IndexTx(), key)
		if err != nil {
			return err
		}
		if found {
			return cs.records.UpdateRecord(op.ClusterTx(), ref, value)
		}
		newRef, err := cs.records.CreateRecord(op.ClusterTx(), value)
		if err != nil {
			return err
		}
		return cs.index.Put(op.IndexTx(), key, newRef)
	})
	if err != nil {
		return err
	}

	listener := cs.listener
	cs.mu.Unlock()
	locked = false
	if listener != nil {
		listener(key)
	}
	return nil
}

// Drop removes key, returning ok==false if it was never set.
func (cs *CatalogStore) Drop(key string) (ok bool, err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.checkOpen(); err != nil {
		return false, err
	}

	var dropped bool
	err = cs.txnMgr.Atomic(dbConfigScope, func(op *AtomicOp) error {
		ref, found, err := cs.index.Get(op.IndexTx(), key)
		if err != nil || !found {
			return err
		}
		if err := cs.index.Remove(op.IndexTx(), key); err != nil {
			return err
		}
		dropped = true
		return cs.records.DeleteRecord(op.ClusterTx(), ref)
	})
	return dropped, err
}

// PrefixScan returns every (key, value) pair whose key starts with
// prefix, in ascending key order, as a snapshot of the index taken under
// the read lock. The read lock is held until every record has been
// fetched, so no write can commit between the index snapshot and the
// record reads.
func (cs *CatalogStore) PrefixScan(prefix string) ([]CatalogEntry, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if err := cs.checkOpen(); err != nil {
		return nil, err
	}

	itx, err := cs.indexStorage.BeginTx(false)
	if err != nil {
		return nil, storageErrf("prefixScan", prefix, err)
	}
	entries, err := cs.index.PrefixScan(itx, prefix)
	_ = itx.Rollback()
	if err != nil {
		return nil, err
	}

	ctx, err := cs.clusterStorage.BeginTx(false)
	if err != nil {
		return nil, storageErrf("prefixScan", prefix, err)
	}
	defer ctx.Rollback()

	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		data, found, err := cs.records.ReadRecord(ctx, e.Ref)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, corruptf(e.Key, 0, "index entry refers to missing record %d", e.Ref)
		}
		out = append(out, CatalogEntry{Key: e.Key, Value: data})
	}
	return out, nil
}

// Clear removes every key under prefix in a single atomic operation.
func (cs *CatalogStore) Clear(prefix string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.checkOpen(); err != nil {
		return err
	}

	return cs.txnMgr.Atomic(dbConfigScope, func(op *AtomicOp) error {
		entries, err := cs.index.PrefixScan(op.IndexTx(), prefix)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := cs.index.Remove(op.IndexTx(), e.Key); err != nil {
				return err
			}
			if err := cs.records.DeleteRecord(op.ClusterTx(), e.Ref); err != nil {
				return err
			}
		}
		return nil
	})
}

// CatalogEntry is one (key, value) pair returned by PrefixScan.
type CatalogEntry struct {
	Key   string
	Value []byte
}
