package atomicconfig

// The "configuration" key holds a flat map of general-purpose settings,
// distinct from the fixed catalog fields in keys.go. Its wire format is a
// 4-byte entry count followed by that many (string value, string value)
// key/value pairs, in ascending key order for determinism.
//
// Writing consults GlobalCatalog per key: a key registered as hidden is
// written with a null value (its content is never persisted), and a key
// the catalog doesn't recognize at all is still written — with a null
// value — so a later load doesn't silently lose the slot, and a warning
// is logged. Reading drops (and logs) any key GlobalCatalog no longer
// recognizes, and restores every other key whose value was non-null.

func encodeConfigurationBlob(ctx map[string]string, catalog GlobalCatalog, logger Logger) []byte {
	w := newByteWriter(64)
	keys := sortedKeys(ctx)
	w.Int32(int32(len(keys)))
	for _, k := range keys {
		key := k
		w.StringValue(&key)
		info, known := catalog.FindByKey(k)
		switch {
		case known && info.Hidden:
			w.StringValue(nil)
		case known:
			v := ctx[k]
			w.StringValue(&v)
		default:
			w.StringValue(nil)
			logger.Warnf("atomicconfig: storing configuration property %q not present in the current global catalog; value dropped", k)
		}
	}
	return w.Bytes()
}

func decodeConfigurationBlob(data []byte, catalog GlobalCatalog, logger Logger) (map[string]string, error) {
	r := newByteReader(keyConfiguration, data)
	count, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, r.corrupt("negative configuration entry count %d", count)
	}
	ctx := make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		v, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		key := derefOr(k, "")
		if _, known := catalog.FindByKey(key); !known {
			logger.Warnf("atomicconfig: ignoring stored configuration property %q, not present in the current global catalog", key)
			continue
		}
		if v != nil {
			ctx[key] = *v
		}
	}
	if r.Remaining() != 0 {
		return nil, r.corrupt("%d trailing bytes after configuration blob", r.Remaining())
	}
	return ctx, nil
}
