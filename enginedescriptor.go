package atomicconfig

// IndexEngineDescriptor is the value stored under an "engine_<name>" key:
// the configuration an index engine was created with, needed to reopen it
// without re-deriving any of its choices from the schema.
type IndexEngineDescriptor struct {
	Name                string
	Algorithm           *string // nilable: an engine may have no algorithm set
	IndexType           string  // "" when absent, never null on the wire
	ValueSerializerID   byte
	KeySerializerID     byte
	Automatic           bool
	DurableInNonTxMode  bool
	Version             int32
	NullValuesSupported bool
	KeySize             int32
	Encryption          *string // nilable
	EncryptionOptions   *string // nilable
	KeyTypes            []string
	EngineProperties    map[string]string
}

func engineKey(name string) string { return engineKeyPrefix + name }

// encodeIndexEngineDescriptor renders: version (int); valueSerializerId,
// keySerializerId, automatic flag, durableInNonTxMode flag,
// nullValuesSupported flag (1 byte each); keySize (int); algorithm,
// indexType, encryption, encryptionOptions (string values); key type
// count (int) + that many string values; engine-property count (int) +
// that many (string, string) pairs.
func encodeIndexEngineDescriptor(e IndexEngineDescriptor) []byte {
	w := newByteWriter(128)
	w.Int32(e.Version)
	w.Byte(e.ValueSerializerID)
	w.Byte(e.KeySerializerID)
	w.Bool(e.Automatic)
	w.Bool(e.DurableInNonTxMode)
	w.Bool(e.NullValuesSupported)
	w.Int32(e.KeySize)
	w.StringValue(e.Algorithm)
	indexType := e.IndexType
	w.StringValue(&indexType)
	w.StringValue(e.Encryption)
	w.StringValue(e.EncryptionOptions)

	w.Int32(int32(len(e.KeyTypes)))
	for _, kt := range e.KeyTypes {
		kt := kt
		w.StringValue(&kt)
	}

	keys := sortedKeys(e.EngineProperties)
	w.Int32(int32(len(keys)))
	for _, k := range keys {
		k, v := k, e.EngineProperties[k]
		w.StringValue(&k)
		w.StringValue(&v)
	}
	return w.Bytes()
}

func decodeIndexEngineDescriptor(name string, data []byte) (IndexEngineDescriptor, error) {
	key := engineKey(name)
	r := newByteReader(key, data)
	e := IndexEngineDescriptor{Name: name}

	var err error
	if e.Version, err = r.Int32(); err != nil {
		return e, err
	}
	if e.ValueSerializerID, err = r.Byte(); err != nil {
		return e, err
	}
	if e.KeySerializerID, err = r.Byte(); err != nil {
		return e, err
	}
	if e.Automatic, err = r.Bool(); err != nil {
		return e, err
	}
	if e.DurableInNonTxMode, err = r.Bool(); err != nil {
		return e, err
	}
	if e.NullValuesSupported, err = r.Bool(); err != nil {
		return e, err
	}
	if e.KeySize, err = r.Int32(); err != nil {
		return e, err
	}
	if e.Algorithm, err = r.StringValue(); err != nil {
		return e, err
	}
	indexType, err := r.StringValue()
	if err != nil {
		return e, err
	}
	e.IndexType = derefOr(indexType, "")
	if e.Encryption, err = r.StringValue(); err != nil {
		return e, err
	}
	if e.EncryptionOptions, err = r.StringValue(); err != nil {
		return e, err
	}

	keyTypeCount, err := r.Int32()
	if err != nil {
		return e, err
	}
	if keyTypeCount < 0 {
		return e, r.corrupt("negative key type count %d", keyTypeCount)
	}
	e.KeyTypes = make([]string, keyTypeCount)
	for i := range e.KeyTypes {
		kt, err := r.StringValue()
		if err != nil {
			return e, err
		}
		e.KeyTypes[i] = derefOr(kt, "")
	}

	propCount, err := r.Int32()
	if err != nil {
		return e, err
	}
	if propCount < 0 {
		return e, r.corrupt("negative engine property count %d", propCount)
	}
	e.EngineProperties = make(map[string]string, propCount)
	for i := int32(0); i < propCount; i++ {
		k, err := r.StringValue()
		if err != nil {
			return e, err
		}
		v, err := r.StringValue()
		if err != nil {
			return e, err
		}
		e.EngineProperties[derefOr(k, "")] = derefOr(v, "")
	}

	if r.Remaining() != 0 {
		return e, r.corrupt("%d trailing bytes after index engine descriptor", r.Remaining())
	}
	return e, nil
}
