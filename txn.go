package atomicconfig

import "sync"

// TxnMgr coordinates one atomic operation at a time across IndexMap's and
// RecordCluster's independent storage instances. It is grounded on the
// teacher's db.Tx(writable, f) pattern: begin, run the body, commit unless
// the body errored or panicked, in which case roll back and propagate.
//
// Unlike a single-storage transaction, an AtomicOp here is really two
// storage transactions kept in lockstep. Commit order matters: the record
// cluster commits first, then the index, so a crash between the two can
// only orphan a record (a collectible, never-indexed row), never leave an
// index entry pointing at a record that was never written.
type TxnMgr struct {
	mu             sync.Mutex
	active         bool
	clusterStorage storage
	indexStorage   storage
}

func newTxnMgr(clusterStorage, indexStorage storage) *TxnMgr {
	return &TxnMgr{clusterStorage: clusterStorage, indexStorage: indexStorage}
}

// AtomicOp is the scope obtained from StartAtomicOperation. It is not
// reentrant: starting a second operation while one is active panics,
// matching the catalog's single-writer invariant.
type AtomicOp struct {
	mgr       *TxnMgr
	name      string
	clusterTx storageTx
	indexTx   storageTx
	rollback  bool
	done      bool
}

func (m *TxnMgr) StartAtomicOperation(name string) (*AtomicOp, error) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		panic("atomicconfig: nested atomic operations are not permitted (scope " + name + ")")
	}
	m.active = true
	m.mu.Unlock()

	clusterTx, err := m.clusterStorage.BeginTx(true)
	if err != nil {
		m.release()
		return nil, storageErrf("begin:"+name, "", err)
	}
	indexTx, err := m.indexStorage.BeginTx(true)
	if err != nil {
		_ = clusterTx.Rollback()
		m.release()
		return nil, storageErrf("begin:"+name, "", err)
	}
	return &AtomicOp{mgr: m, name: name, clusterTx: clusterTx, indexTx: indexTx}, nil
}

func (m *TxnMgr) release() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// ClusterTx and IndexTx give the body of an atomic operation access to the
// two underlying storage transactions.
func (op *AtomicOp) ClusterTx() storageTx { return op.clusterTx }
func (op *AtomicOp) IndexTx() storageTx   { return op.indexTx }

// Rollback marks the operation to roll back regardless of the error value
// EndAtomicOperation is eventually called with.
func (op *AtomicOp) Rollback() { op.rollback = true }

func (op *AtomicOp) EndAtomicOperation(rollback bool) error {
	if op.done {
		return nil
	}
	op.done = true
	defer op.mgr.release()

	if rollback || op.rollback {
		errIdx := op.indexTx.Rollback()
		errCluster := op.clusterTx.Rollback()
		if errCluster != nil {
			return storageErrf("rollback:"+op.name, "", errCluster)
		}
		if errIdx != nil {
			return storageErrf("rollback:"+op.name, "", errIdx)
		}
		return nil
	}

	if err := op.clusterTx.Commit(); err != nil {
		_ = op.indexTx.Rollback()
		return storageErrf("commit:"+op.name, "", err)
	}
	if err := op.indexTx.Commit(); err != nil {
		// The record cluster write is already durable; the index entry for
		// it is now missing, which is the same "orphaned record" state a
		// mid-commit crash would produce, not a new failure mode.
		return storageErrf("commit:"+op.name, "", err)
	}
	return nil
}

// Atomic runs body within a named atomic operation, committing on a nil
// return, rolling back on error or panic. It mirrors the teacher's
// safelyCall recovery: a panic is rolled back and re-raised, never
// swallowed.
func (m *TxnMgr) Atomic(name string, body func(op *AtomicOp) error) (err error) {
	op, err := m.StartAtomicOperation(name)
	if err != nil {
		return err
	}
	rollback := true
	defer func() {
		if p := recover(); p != nil {
			_ = op.EndAtomicOperation(true)
			panic(p)
		}
		if endErr := op.EndAtomicOperation(rollback); endErr != nil && err == nil {
			err = endErr
		}
	}()
	err = body(op)
	rollback = err != nil
	return err
}
