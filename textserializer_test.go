package atomicconfig

import (
	"strings"
	"testing"
)

func sampleSnapshot() CatalogSnapshot {
	return CatalogSnapshot{
		Version:                 7,
		SchemaRecordID:          "#0:1",
		IndexManagerRecordID:    "#0:2",
		LocaleLanguage:          "en",
		LocaleCountry:           "US",
		DateFormat:              "yyyy-MM-dd",
		DateTimeFormat:          "HH:mm:ss", // never reaches the wire; see TestTextSerializerDateFormatWrittenTwice
		TimeZone:                "UTC",
		Charset:                 "UTF-8",
		ClusterSelection:        "round-robin",
		MinimumClusters:         4,
		ConflictStrategy:        "version",
		RecordSerializer:        "ORecordSerializerBinary",
		RecordSerializerVersion: 0,
		CreatedAtVersion:        "1.0.0",
		PageSize:                -1,
		FreeListBoundary:        -1,
		MaxKeySize:              -1,
		BinaryFormatVersion:     13,
		Clusters: []*ClusterDescriptor{
			{ID: 0, Name: "default", DataSegmentID: -1, UseWAL: true, RecordOverflowGrowFactor: 1.2, RecordGrowFactor: 1.2, BinaryFormatVersion: 13, ConflictStrategy: "version", Status: ClusterStatusOnline, Compression: "nothing"},
			nil,
			{ID: 2, Name: "orders", DataSegmentID: -1, UseWAL: false, RecordOverflowGrowFactor: 1.2, RecordGrowFactor: 1.2, BinaryFormatVersion: 13, ConflictStrategy: "version", Status: ClusterStatusOffline, Encryption: "aes", Compression: "snappy"},
		},
		Properties: map[string]string{"a": "1", "b": "2"},
		Engines: []IndexEngineDescriptor{
			{Name: "byName", Algorithm: strOrNil("CELL_BTREE"), IndexType: "UNIQUE", Version: 12, KeySize: 1, EngineProperties: map[string]string{"x": "1"}},
		},
		Context: map[string]string{"storage.cluster.minimumClusters": "8"},
	}
}

func TestTextSerializerRoundTripAtMaxVersion(t *testing.T) {
	snap := sampleSnapshot()
	text := TextSerializer{}.Serialize(snap, NetworkVersionMax)
	got, err := ParseCatalogText(text, NetworkVersionMax)
	if err != nil {
		t.Fatalf("ParseCatalogText: %v", err)
	}
	assertSnapshotsEqual(t, snap, got)
}

func TestTextSerializerRoundTripOldNetworkVersion(t *testing.T) {
	snap := sampleSnapshot()
	// Below the conflictStrategy/recordSerializer gate: those fields are
	// never written, so the parsed snapshot won't carry them back.
	const oldVersion int32 = 20
	text := TextSerializer{}.Serialize(snap, oldVersion)
	got, err := ParseCatalogText(text, oldVersion)
	if err != nil {
		t.Fatalf("ParseCatalogText: %v", err)
	}
	if got.ConflictStrategy != "" || got.RecordSerializer != "" {
		t.Fatalf("expected version-gated fields to be absent, got %+v", got)
	}
	if got.Version != snap.Version || got.SchemaRecordID != snap.SchemaRecordID {
		t.Fatalf("ungated fields mismatch: %+v", got)
	}
	if got.Clusters[0].BinaryFormatVersion != 0 {
		t.Fatalf("per-cluster binaryVersion should not round trip below NetworkVersionMax, got %d", got.Clusters[0].BinaryFormatVersion)
	}
	// The engine section is written unconditionally at every network
	// version, unlike the recordSerializer/context block it sits next to.
	if len(got.Engines) != 1 || got.Engines[0].Name != "byName" {
		t.Fatalf("expected engines to round trip regardless of network version, got %v", got.Engines)
	}
}

func TestTextSerializerClusterGapSurvivesRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	text := TextSerializer{}.Serialize(snap, NetworkVersionMax)
	got, err := ParseCatalogText(text, NetworkVersionMax)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Clusters) != 3 {
		t.Fatalf("expected 3 cluster slots, got %d", len(got.Clusters))
	}
	if got.Clusters[1] != nil {
		t.Fatalf("expected clusters[1] to stay a gap, got %+v", got.Clusters[1])
	}
}

func TestTextSerializerNullFieldRendersAsSpace(t *testing.T) {
	snap := CatalogSnapshot{}
	text := TextSerializer{}.Serialize(snap, 10)
	if text == "" {
		t.Fatal("expected non-empty text even for an all-zero snapshot")
	}
	got, err := ParseCatalogText(text, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got.SchemaRecordID != "" {
		t.Fatalf("expected empty schema record id, got %q", got.SchemaRecordID)
	}
}

func TestTextSerializerEngineAndContextRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	text := TextSerializer{}.Serialize(snap, NetworkVersionMax)
	got, err := ParseCatalogText(text, NetworkVersionMax)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Engines) != 1 || got.Engines[0].Name != "byName" || got.Engines[0].IndexType != "UNIQUE" {
		t.Fatalf("engine round trip failed: %+v", got.Engines)
	}
	if got.Engines[0].EngineProperties["x"] != "1" {
		t.Fatalf("engine property round trip failed: %+v", got.Engines[0].EngineProperties)
	}
	if got.Context["storage.cluster.minimumClusters"] != "8" {
		t.Fatalf("context round trip failed: %+v", got.Context)
	}
}

func TestTextSerializerDateFormatWrittenTwice(t *testing.T) {
	snap := sampleSnapshot()
	text := TextSerializer{}.Serialize(snap, NetworkVersionMax)
	got, err := ParseCatalogText(text, NetworkVersionMax)
	if err != nil {
		t.Fatal(err)
	}
	if got.DateFormat != snap.DateFormat {
		t.Fatalf("DateFormat = %q, want %q", got.DateFormat, snap.DateFormat)
	}
	if got.DateTimeFormat != snap.DateFormat {
		t.Fatalf("DateTimeFormat should mirror DateFormat (dateTimeFormat never reaches the wire), got %q", got.DateTimeFormat)
	}
}

func TestTextSerializerDiscriminatorAlwaysWritten(t *testing.T) {
	snap := CatalogSnapshot{
		Clusters: []*ClusterDescriptor{{ID: 0, Name: "default", Compression: "nothing"}},
	}
	text := TextSerializer{}.Serialize(snap, NetworkVersionMax)
	found := false
	for _, f := range strings.Split(text, "|") {
		if f == "d" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the paginated cluster discriminator %q on the wire, got %q", "d", text)
	}
}

// TestTextSerializerScenarioSixFieldOrder pins down the exact field order
// at network version 30 (conflictStrategy/context gate open, legacy
// dataSegment block closed, per-cluster encryption and binaryVersion
// gates both closed) against a hand-derived expected string, rather than
// against this package's own encode/decode round trip.
func TestTextSerializerScenarioSixFieldOrder(t *testing.T) {
	snap := CatalogSnapshot{
		Version:                 1,
		SchemaRecordID:          "#0:0",
		IndexManagerRecordID:    "#0:1",
		LocaleLanguage:          "en",
		LocaleCountry:           "US",
		DateFormat:              "yyyy-MM-dd",
		TimeZone:                "UTC",
		Charset:                 "UTF-8",
		ConflictStrategy:        "version",
		ClusterSelection:        "round-robin",
		MinimumClusters:         1,
		RecordSerializer:        "ORecordSerializerBinary",
		RecordSerializerVersion: 0,
		CreatedAtVersion:        "1.0.0",
		PageSize:                -1,
		FreeListBoundary:        -1,
		MaxKeySize:              -1,
		BinaryFormatVersion:     12,
		Clusters: []*ClusterDescriptor{
			{ID: 0, Name: "default", DataSegmentID: -1, UseWAL: true, RecordOverflowGrowFactor: 1.2, RecordGrowFactor: 1.2, ConflictStrategy: "version", Status: ClusterStatusOnline, Compression: "nothing"},
		},
	}

	const want = "1| |#0:0||#0:1|en|US|yyyy-MM-dd|yyyy-MM-dd|UTC|UTF-8|version| |0%|classic|500Kb|2Gb|50%|false|0|" +
		"1|0|default|-1|d|1|1.2|1.2|nothing|version|ONLINE|" +
		"0|12|round-robin|1|ORecordSerializerBinary|0|0|0|1.0.0|-1|-1|-1"

	got := TextSerializer{}.Serialize(snap, 30)
	if got != want {
		t.Fatalf("field order at network version 30:\nwant %q\ngot  %q", want, got)
	}
}

func assertSnapshotsEqual(t *testing.T, want, got CatalogSnapshot) {
	t.Helper()
	if want.Version != got.Version ||
		want.SchemaRecordID != got.SchemaRecordID ||
		want.IndexManagerRecordID != got.IndexManagerRecordID ||
		want.LocaleLanguage != got.LocaleLanguage ||
		want.LocaleCountry != got.LocaleCountry ||
		want.DateFormat != got.DateFormat ||
		want.TimeZone != got.TimeZone ||
		want.Charset != got.Charset ||
		want.ConflictStrategy != got.ConflictStrategy ||
		want.RecordSerializer != got.RecordSerializer ||
		want.RecordSerializerVersion != got.RecordSerializerVersion ||
		want.ClusterSelection != got.ClusterSelection ||
		want.MinimumClusters != got.MinimumClusters ||
		want.CreatedAtVersion != got.CreatedAtVersion ||
		want.PageSize != got.PageSize ||
		want.FreeListBoundary != got.FreeListBoundary ||
		want.MaxKeySize != got.MaxKeySize ||
		want.BinaryFormatVersion != got.BinaryFormatVersion {
		t.Fatalf("scalar mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if len(want.Clusters) != len(got.Clusters) {
		t.Fatalf("cluster count mismatch: want %d, got %d", len(want.Clusters), len(got.Clusters))
	}
	for i := range want.Clusters {
		w, g := want.Clusters[i], got.Clusters[i]
		if w == nil || g == nil {
			if w != g {
				t.Fatalf("cluster[%d] nilness mismatch: want %v, got %v", i, w, g)
			}
			continue
		}
		if *w != *g {
			t.Fatalf("cluster[%d] mismatch: want %+v, got %+v", i, *w, *g)
		}
	}
	if len(want.Properties) != len(got.Properties) {
		t.Fatalf("property count mismatch: want %v, got %v", want.Properties, got.Properties)
	}
	for k, v := range want.Properties {
		if got.Properties[k] != v {
			t.Fatalf("property %q mismatch: want %q, got %q", k, v, got.Properties[k])
		}
	}
}
