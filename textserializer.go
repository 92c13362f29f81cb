package atomicconfig

import (
	"strconv"
	"strings"
)

// NetworkVersionMax is the sentinel network version that makes
// TextSerializer append the per-cluster binaryVersion field — the
// convention a caller uses to mean "emit everything, I need the full
// picture" rather than whatever the oldest supported wire peer
// understands.
const NetworkVersionMax = int32(1<<31 - 1)

// CatalogSnapshot is the flattened view of a catalog TextSerializer
// consumes and produces; Store.Snapshot builds one from the live catalog.
type CatalogSnapshot struct {
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
	Clusters                []*ClusterDescriptor // sparse: index == cluster id, nil for a gap
	Properties              map[string]string
	Engines                 []IndexEngineDescriptor
	Context                 map[string]string // the resolved "configuration" blob, hidden keys already stripped
}

// TextSerializer renders a CatalogSnapshot as the pipe-delimited text
// format legacy wire peers expect: fields are written in a fixed order,
// separated by '|' (no separator before the first field), a null field
// renders as a single space, and several fields only appear for peers new
// enough to understand them.
//
// Version gates, oldest to newest:
//   - networkVersion > 24: conflictStrategy, per-cluster conflictStrategy,
//     recordSerializer, recordSerializerVersion, the configuration context
//     block
//   - networkVersion <= 25: legacy fixed-size dataSegment/txSegment block
//     (present for compatibility with peers that predate per-cluster
//     descriptors)
//   - networkVersion > 25: cluster status
//   - networkVersion >= 31: per-cluster encryption
//   - networkVersion == NetworkVersionMax: per-cluster binaryVersion
type TextSerializer struct{}

func (TextSerializer) Serialize(snap CatalogSnapshot, networkVersion int32) string {
	var b strings.Builder
	w := &textFieldWriter{b: &b}

	w.Int(snap.Version)
	w.Str("") // reserved null pad field, renders as a space

	w.Str(snap.SchemaRecordID)
	w.Empty() // reserved empty-string pad field between the two record ids
	w.Str(snap.IndexManagerRecordID)

	w.Str(snap.LocaleLanguage)
	w.Str(snap.LocaleCountry)
	w.Str(snap.DateFormat)
	w.Str(snap.DateFormat) // written twice; dateTimeFormat never made it onto the wire

	w.Str(snap.TimeZone)
	w.Str(snap.Charset)
	if networkVersion > 24 {
		w.Str(snap.ConflictStrategy)
	}

	physSegmentToStream(w)

	clustersToStream(w, snap.Clusters, networkVersion)

	if networkVersion <= 25 {
		legacyDataSegmentToStream(w)
	}

	propertiesToStream(w, snap.Properties)

	w.Int(snap.BinaryFormatVersion)
	w.Str(snap.ClusterSelection)
	w.Int(snap.MinimumClusters)

	if networkVersion > 24 {
		w.Str(snap.RecordSerializer)
		w.Int(snap.RecordSerializerVersion)
		contextToStream(w, snap.Context)
	}

	enginesToStream(w, snap.Engines)

	w.Str(snap.CreatedAtVersion)
	w.Int(snap.PageSize)
	w.Int(snap.FreeListBoundary)
	w.Int(snap.MaxKeySize)

	return b.String()
}

// physSegmentToStream renders the legacy, always-fresh physical segment
// block the original unconditionally writes ahead of the cluster list: a
// new segment config has no location and no info files, so every field
// here is the type's default value rather than anything Store ever tracks.
func physSegmentToStream(w *textFieldWriter) {
	w.Str("")      // location
	w.Str("0%")    // maxSize
	w.Str("classic")
	w.Str("500Kb") // fileStartSize
	w.Str("2Gb")   // fileMaxSize
	w.Str("50%")   // fileIncrementSize
	w.Str("false") // defrag
	w.Int(0)       // infoFiles count
}

func legacyDataSegmentToStream(w *textFieldWriter) {
	w.Int(0)  // dataSegment array
	w.Empty() // tx segment file path
	w.Empty() // tx segment file type
	w.Int(0)  // tx segment file max size
	w.Str("false")
	w.Str("false")
}

func clustersToStream(w *textFieldWriter, clusters []*ClusterDescriptor, networkVersion int32) {
	w.Int(int32(len(clusters)))
	for _, c := range clusters {
		if c == nil {
			w.Int(-1)
			continue
		}
		w.Int(int32(c.ID))
		w.Str(c.Name)
		w.Int(c.DataSegmentID)

		w.Str("d") // discriminates the paginated cluster variant; the only one this catalog stores

		if c.UseWAL {
			w.Int(1)
		} else {
			w.Int(0)
		}
		w.Float(c.RecordOverflowGrowFactor)
		w.Float(c.RecordGrowFactor)
		w.Str(c.Compression)

		if networkVersion >= 31 {
			w.Str(c.Encryption)
		}
		if networkVersion > 24 {
			w.Str(c.ConflictStrategy)
		}
		if networkVersion > 25 {
			w.Str(string(c.Status))
		}
		if networkVersion >= NetworkVersionMax {
			w.Int(c.BinaryFormatVersion)
		}
	}
}

func propertiesToStream(w *textFieldWriter, props map[string]string) {
	keys := sortedKeys(props)
	w.Int(int32(len(keys)))
	for _, k := range keys {
		w.Str(k)
		w.Str(props[k])
	}
}

func contextToStream(w *textFieldWriter, ctx map[string]string) {
	keys := sortedKeys(ctx)
	w.Int(int32(len(keys)))
	for _, k := range keys {
		w.Str(k)
		w.Str(ctx[k])
	}
}

func enginesToStream(w *textFieldWriter, engines []IndexEngineDescriptor) {
	w.Int(int32(len(engines)))
	for _, e := range engines {
		w.Str(e.Name)
		w.Str(derefOr(e.Algorithm, ""))
		w.Str(e.IndexType)

		w.Int(int32(e.ValueSerializerID))
		w.Int(int32(e.KeySerializerID))

		w.Bool(e.Automatic)
		w.Bool(e.DurableInNonTxMode)

		w.Int(e.Version)
		w.Bool(e.NullValuesSupported)
		w.Int(e.KeySize)
		w.Str(derefOr(e.Encryption, ""))
		w.Str(derefOr(e.EncryptionOptions, ""))

		w.Int(int32(len(e.KeyTypes)))
		for _, kt := range e.KeyTypes {
			w.Str(kt)
		}

		propKeys := sortedKeys(e.EngineProperties)
		w.Int(int32(len(propKeys)))
		for _, k := range propKeys {
			w.Str(k)
			w.Str(e.EngineProperties[k])
		}
	}
}

// textFieldWriter appends fields to b, handling the '|' separator and the
// null-as-space convention uniformly for strings, integers and floats.
type textFieldWriter struct {
	b *strings.Builder
}

func (w *textFieldWriter) sep() {
	if w.b.Len() > 0 {
		w.b.WriteByte('|')
	}
}

// Empty writes a field with no content at all — the wire distinguishes
// this from a null field, which renders as a single space.
func (w *textFieldWriter) Empty() {
	w.sep()
}

func (w *textFieldWriter) Str(s string) {
	w.sep()
	if s == "" {
		w.b.WriteByte(' ')
		return
	}
	w.b.WriteString(s)
}

func (w *textFieldWriter) Int(v int32) {
	w.sep()
	w.b.WriteString(strconv.FormatInt(int64(v), 10))
}

func (w *textFieldWriter) Float(v float32) {
	w.sep()
	w.b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
}

func (w *textFieldWriter) Bool(v bool) {
	w.sep()
	if v {
		w.b.WriteString("true")
	} else {
		w.b.WriteString("false")
	}
}

// ParseCatalogText parses text produced by TextSerializer.Serialize back
// into a CatalogSnapshot, applying the same version gates used to write
// it. networkVersion must match the version the text was serialized
// with; there is no self-describing marker for it in the format, matching
// the legacy wire protocol this mirrors.
func ParseCatalogText(text string, networkVersion int32) (CatalogSnapshot, error) {
	r := &textFieldReader{fields: strings.Split(text, "|")}
	var snap CatalogSnapshot

	var err error
	if snap.Version, err = r.Int(); err != nil {
		return snap, err
	}
	if _, err = r.Str(); err != nil { // reserved pad field
		return snap, err
	}

	if snap.SchemaRecordID, err = r.Str(); err != nil {
		return snap, err
	}
	if _, err = r.Str(); err != nil { // reserved pad field
		return snap, err
	}
	if snap.IndexManagerRecordID, err = r.Str(); err != nil {
		return snap, err
	}

	if snap.LocaleLanguage, err = r.Str(); err != nil {
		return snap, err
	}
	if snap.LocaleCountry, err = r.Str(); err != nil {
		return snap, err
	}
	if snap.DateFormat, err = r.Str(); err != nil {
		return snap, err
	}
	snap.DateTimeFormat = snap.DateFormat
	if _, err = r.Str(); err != nil { // dateFormat written a second time
		return snap, err
	}

	if snap.TimeZone, err = r.Str(); err != nil {
		return snap, err
	}
	if snap.Charset, err = r.Str(); err != nil {
		return snap, err
	}
	if networkVersion > 24 {
		if snap.ConflictStrategy, err = r.Str(); err != nil {
			return snap, err
		}
	}

	if err = physSegmentFromStream(r); err != nil {
		return snap, err
	}

	if snap.Clusters, err = clustersFromStream(r, networkVersion); err != nil {
		return snap, err
	}

	if networkVersion <= 25 {
		if err = legacyDataSegmentFromStream(r); err != nil {
			return snap, err
		}
	}

	if snap.Properties, err = propertiesFromStream(r); err != nil {
		return snap, err
	}

	if snap.BinaryFormatVersion, err = r.Int(); err != nil {
		return snap, err
	}
	if snap.ClusterSelection, err = r.Str(); err != nil {
		return snap, err
	}
	if snap.MinimumClusters, err = r.Int(); err != nil {
		return snap, err
	}

	if networkVersion > 24 {
		if snap.RecordSerializer, err = r.Str(); err != nil {
			return snap, err
		}
		if snap.RecordSerializerVersion, err = r.Int(); err != nil {
			return snap, err
		}
		if snap.Context, err = contextFromStream(r); err != nil {
			return snap, err
		}
	}

	if snap.Engines, err = enginesFromStream(r); err != nil {
		return snap, err
	}

	if snap.CreatedAtVersion, err = r.Str(); err != nil {
		return snap, err
	}
	if snap.PageSize, err = r.Int(); err != nil {
		return snap, err
	}
	if snap.FreeListBoundary, err = r.Int(); err != nil {
		return snap, err
	}
	if snap.MaxKeySize, err = r.Int(); err != nil {
		return snap, err
	}

	return snap, nil
}

func physSegmentFromStream(r *textFieldReader) error {
	for i := 0; i < 7; i++ {
		if _, err := r.Str(); err != nil {
			return err
		}
	}
	n, err := r.Int()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		if _, err := r.Str(); err != nil { // path
			return err
		}
		if _, err := r.Str(); err != nil { // type
			return err
		}
		if _, err := r.Str(); err != nil { // maxSize
			return err
		}
	}
	return nil
}

func legacyDataSegmentFromStream(r *textFieldReader) error {
	if _, err := r.Int(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ { // tx segment path, type, max size
		if _, err := r.Str(); err != nil {
			return err
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Str(); err != nil {
			return err
		}
	}
	return nil
}

func clustersFromStream(r *textFieldReader, networkVersion int32) ([]*ClusterDescriptor, error) {
	count, err := r.Int()
	if err != nil {
		return nil, err
	}
	out := make([]*ClusterDescriptor, count)
	for i := range out {
		id, err := r.Int()
		if err != nil {
			return nil, err
		}
		if id == -1 {
			continue
		}
		name, err := r.Str()
		if err != nil {
			return nil, err
		}
		dataSegmentID, err := r.Int()
		if err != nil {
			return nil, err
		}
		if _, err = r.Str(); err != nil { // "d" discriminator
			return nil, err
		}
		useWALInt, err := r.Int()
		if err != nil {
			return nil, err
		}
		overflowGrow, err := r.Float()
		if err != nil {
			return nil, err
		}
		recordGrow, err := r.Float()
		if err != nil {
			return nil, err
		}
		compression, err := r.Str()
		if err != nil {
			return nil, err
		}
		var encryption string
		if networkVersion >= 31 {
			if encryption, err = r.Str(); err != nil {
				return nil, err
			}
		}
		var conflict string
		if networkVersion > 24 {
			if conflict, err = r.Str(); err != nil {
				return nil, err
			}
		}
		var status string
		if networkVersion > 25 {
			if status, err = r.Str(); err != nil {
				return nil, err
			}
		}
		var binVer int32
		if networkVersion >= NetworkVersionMax {
			if binVer, err = r.Int(); err != nil {
				return nil, err
			}
		}
		if status == "" {
			status = string(ClusterStatusOnline)
		}
		out[i] = &ClusterDescriptor{
			ID:                       int(id),
			Name:                     name,
			DataSegmentID:            dataSegmentID,
			UseWAL:                   useWALInt == 1,
			RecordOverflowGrowFactor: overflowGrow,
			RecordGrowFactor:         recordGrow,
			BinaryFormatVersion:      binVer,
			ConflictStrategy:         conflict,
			Status:                   ClusterStatus(status),
			Encryption:               encryption,
			Compression:              compression,
		}
	}
	return out, nil
}

func propertiesFromStream(r *textFieldReader) (map[string]string, error) {
	count, err := r.Int()
	if err != nil {
		return nil, err
	}
	props := make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := r.Str()
		if err != nil {
			return nil, err
		}
		v, err := r.Str()
		if err != nil {
			return nil, err
		}
		props[k] = v
	}
	return props, nil
}

func contextFromStream(r *textFieldReader) (map[string]string, error) {
	count, err := r.Int()
	if err != nil {
		return nil, err
	}
	ctx := make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := r.Str()
		if err != nil {
			return nil, err
		}
		v, err := r.Str()
		if err != nil {
			return nil, err
		}
		ctx[k] = v
	}
	return ctx, nil
}

func enginesFromStream(r *textFieldReader) ([]IndexEngineDescriptor, error) {
	count, err := r.Int()
	if err != nil {
		return nil, err
	}
	out := make([]IndexEngineDescriptor, count)
	for i := range out {
		e := IndexEngineDescriptor{}
		if e.Name, err = r.Str(); err != nil {
			return nil, err
		}
		algorithm, err := r.Str()
		if err != nil {
			return nil, err
		}
		e.Algorithm = strOrNil(algorithm)
		if e.IndexType, err = r.Str(); err != nil {
			return nil, err
		}

		valueSerializerID, err := r.Int()
		if err != nil {
			return nil, err
		}
		e.ValueSerializerID = byte(valueSerializerID)
		keySerializerID, err := r.Int()
		if err != nil {
			return nil, err
		}
		e.KeySerializerID = byte(keySerializerID)

		if e.Automatic, err = r.Bool(); err != nil {
			return nil, err
		}
		if e.DurableInNonTxMode, err = r.Bool(); err != nil {
			return nil, err
		}

		if e.Version, err = r.Int(); err != nil {
			return nil, err
		}
		if e.NullValuesSupported, err = r.Bool(); err != nil {
			return nil, err
		}
		if e.KeySize, err = r.Int(); err != nil {
			return nil, err
		}
		encryption, err := r.Str()
		if err != nil {
			return nil, err
		}
		e.Encryption = strOrNil(encryption)
		encryptionOptions, err := r.Str()
		if err != nil {
			return nil, err
		}
		e.EncryptionOptions = strOrNil(encryptionOptions)

		keyTypeCount, err := r.Int()
		if err != nil {
			return nil, err
		}
		e.KeyTypes = make([]string, keyTypeCount)
		for j := range e.KeyTypes {
			if e.KeyTypes[j], err = r.Str(); err != nil {
				return nil, err
			}
		}

		propCount, err := r.Int()
		if err != nil {
			return nil, err
		}
		e.EngineProperties = make(map[string]string, propCount)
		for j := int32(0); j < propCount; j++ {
			k, err := r.Str()
			if err != nil {
				return nil, err
			}
			v, err := r.Str()
			if err != nil {
				return nil, err
			}
			e.EngineProperties[k] = v
		}

		out[i] = e
	}
	return out, nil
}

type textFieldReader struct {
	fields []string
	pos    int
}

func (r *textFieldReader) next() (string, error) {
	if r.pos >= len(r.fields) {
		return "", invalidArgf("catalog text", "ran out of fields at position %d", r.pos)
	}
	f := r.fields[r.pos]
	r.pos++
	return f, nil
}

func (r *textFieldReader) Str() (string, error) {
	f, err := r.next()
	if err != nil {
		return "", err
	}
	if f == " " {
		return "", nil
	}
	return f, nil
}

func (r *textFieldReader) Int() (int32, error) {
	f, err := r.next()
	if err != nil {
		return 0, err
	}
	if f == " " || f == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(f, 10, 32)
	if err != nil {
		return 0, invalidArgf("catalog text", "expected an integer field, found %q", f)
	}
	return int32(v), nil
}

func (r *textFieldReader) Float() (float32, error) {
	f, err := r.next()
	if err != nil {
		return 0, err
	}
	if f == " " || f == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(f, 32)
	if err != nil {
		return 0, invalidArgf("catalog text", "expected a float field, found %q", f)
	}
	return float32(v), nil
}

func (r *textFieldReader) Bool() (bool, error) {
	f, err := r.next()
	if err != nil {
		return false, err
	}
	return f == "true" || f == "1", nil
}
