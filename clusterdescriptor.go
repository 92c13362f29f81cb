package atomicconfig

import "fmt"

// ClusterStatus is the lifecycle state of a cluster (partition) within the
// catalog. The catalog only stores it: GetClusters and the text
// serializer include OFFLINE clusters like any other.
type ClusterStatus string

const (
	ClusterStatusOnline  ClusterStatus = "ONLINE"
	ClusterStatusOffline ClusterStatus = "OFFLINE"
)

// ClusterDescriptor is the value stored under a "cluster_<id>" key: the
// configuration of one physical cluster (partition) of the database.
type ClusterDescriptor struct {
	ID                       int
	Name                     string
	DataSegmentID            int32
	UseWAL                   bool
	RecordOverflowGrowFactor float32
	RecordGrowFactor         float32
	BinaryFormatVersion      int32
	Encryption               string
	ConflictStrategy         string
	Status                   ClusterStatus
	Compression              string
}

// defaultRecordGrowFactor is the original's fixed default for both
// per-cluster grow factors, applied whenever a caller leaves them zero.
const defaultRecordGrowFactor = float32(1.2)

func clusterKey(id int) string { return fmt.Sprintf("%s%d", clusterKeyPrefix, id) }

// encodeClusterDescriptor renders the fixed layout: name (string value),
// dataSegmentId (4-byte int), useWal (1 byte), the two record grow
// factors (4-byte floats), binaryFormatVersion (4-byte int), then
// encryption, conflictStrategy, status and compression, each a string
// value.
func encodeClusterDescriptor(c ClusterDescriptor) []byte {
	w := newByteWriter(64)
	name := c.Name
	w.StringValue(&name)
	w.Int32(c.DataSegmentID)
	w.Bool(c.UseWAL)
	w.Float32(c.RecordOverflowGrowFactor)
	w.Float32(c.RecordGrowFactor)
	w.Int32(c.BinaryFormatVersion)
	w.StringValue(strOrNil(c.Encryption))
	w.StringValue(strOrNil(c.ConflictStrategy))
	status := string(c.Status)
	w.StringValue(&status)
	w.StringValue(strOrNil(c.Compression))
	return w.Bytes()
}

func decodeClusterDescriptor(id int, data []byte) (ClusterDescriptor, error) {
	r := newByteReader(clusterKey(id), data)
	name, err := r.StringValue()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	dataSegmentID, err := r.Int32()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	useWAL, err := r.Bool()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	overflowGrow, err := r.Float32()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	recordGrow, err := r.Float32()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	binVer, err := r.Int32()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	encryption, err := r.StringValue()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	conflict, err := r.StringValue()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	status, err := r.StringValue()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	compression, err := r.StringValue()
	if err != nil {
		return ClusterDescriptor{}, err
	}
	if r.Remaining() != 0 {
		return ClusterDescriptor{}, r.corrupt("%d trailing bytes after cluster descriptor", r.Remaining())
	}
	return ClusterDescriptor{
		ID:                       id,
		Name:                     derefOr(name, ""),
		DataSegmentID:            dataSegmentID,
		UseWAL:                   useWAL,
		RecordOverflowGrowFactor: overflowGrow,
		RecordGrowFactor:         recordGrow,
		BinaryFormatVersion:      binVer,
		Encryption:               derefOr(encryption, ""),
		ConflictStrategy:         derefOr(conflict, ""),
		Status:                   ClusterStatus(derefOr(status, string(ClusterStatusOnline))),
		Compression:              derefOr(compression, ""),
	}, nil
}
