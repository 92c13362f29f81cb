package atomicconfig

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewInMemory(Options{Logger: NewNopLogger()})
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewInMemoryPopulatesDefaults(t *testing.T) {
	s := newTestStore(t)

	if v, err := s.Version(); err != nil || v != 0 {
		t.Fatalf("Version() = %d, %v, want 0, nil", v, err)
	}
	if v, err := s.TimeZone(); err != nil || v != "UTC" {
		t.Fatalf("TimeZone() = %q, %v, want UTC", v, err)
	}
	if v, err := s.DateFormat(); err != nil || v != "yyyy-MM-dd" {
		t.Fatalf("DateFormat() = %q, %v", v, err)
	}
	if v, err := s.MinimumClusters(); err != nil || v != 0 {
		t.Fatalf("MinimumClusters() = %d, %v, want 0 (automatic)", v, err)
	}
	resolved, err := s.ResolvedMinimumClusters()
	if err != nil || resolved < 1 {
		t.Fatalf("ResolvedMinimumClusters() = %d, %v, want >= 1", resolved, err)
	}
}

func TestStoreSetAndGetScalarFields(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetVersion(5); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Version(); err != nil || v != 5 {
		t.Fatalf("Version() = %d, %v", v, err)
	}

	if err := s.SetSchemaRecordID("#0:1"); err != nil {
		t.Fatal(err)
	}
	if v, err := s.SchemaRecordID(); err != nil || v != "#0:1" {
		t.Fatalf("SchemaRecordID() = %q, %v", v, err)
	}

	if err := s.SetMinimumClusters(-1); err == nil {
		t.Fatal("expected SetMinimumClusters(-1) to fail")
	}
}

func TestStoreClusterFamily(t *testing.T) {
	s := newTestStore(t)

	c0 := ClusterDescriptor{ID: 0, Name: "default", UseWAL: true, Compression: "nothing"}
	c2 := ClusterDescriptor{ID: 2, Name: "orders", UseWAL: false, Compression: "snappy"}
	if err := s.SetCluster(c0); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCluster(c2); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetCluster(0)
	if err != nil || !ok || got.Name != "default" {
		t.Fatalf("GetCluster(0) = %+v, ok=%v, err=%v", got, ok, err)
	}
	// SetCluster defaults Status to ONLINE when left unset.
	if got.Status != ClusterStatusOnline {
		t.Fatalf("GetCluster(0).Status = %q, want ONLINE", got.Status)
	}

	clusters, err := s.GetClusters()
	if err != nil {
		t.Fatal(err)
	}
	if len(clusters) != 3 {
		t.Fatalf("GetClusters() length = %d, want 3 (sparse up to id 2)", len(clusters))
	}
	if clusters[1] != nil {
		t.Fatalf("GetClusters()[1] should be a nil gap, got %+v", clusters[1])
	}
	if clusters[0] == nil || clusters[0].Name != "default" {
		t.Fatalf("GetClusters()[0] = %+v", clusters[0])
	}

	dropped, err := s.DropCluster(0)
	if err != nil || !dropped {
		t.Fatalf("DropCluster(0) = %v, %v", dropped, err)
	}
	if _, ok, err := s.GetCluster(0); err != nil || ok {
		t.Fatalf("GetCluster(0) after drop: ok=%v err=%v", ok, err)
	}

	if err := s.SetCluster(ClusterDescriptor{ID: -1}); err == nil {
		t.Fatal("expected SetCluster with negative id to fail")
	}
}

func TestStoreIndexEngineFamilyNeverOverwrites(t *testing.T) {
	s := newTestStore(t)

	e1 := IndexEngineDescriptor{Name: "byName", Version: 1, KeySize: 8, IndexType: "UNIQUE"}
	e2 := IndexEngineDescriptor{Name: "byName", Version: 2, KeySize: 16, IndexType: "NOTUNIQUE"}

	if err := s.AddIndexEngine(e1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddIndexEngine(e2); err != nil {
		t.Fatal(err) // AddIndexEngine warns and skips, it does not error
	}

	got, ok, err := s.GetIndexEngine("byName")
	if err != nil || !ok {
		t.Fatalf("GetIndexEngine: ok=%v err=%v", ok, err)
	}
	if got.Version != 1 || got.IndexType != "UNIQUE" {
		t.Fatalf("second AddIndexEngine call should not have overwritten the first, got %+v", got)
	}

	engines, err := s.IndexEngines()
	if err != nil {
		t.Fatal(err)
	}
	if len(engines) != 1 {
		t.Fatalf("IndexEngines() = %v, want exactly 1", engines)
	}

	dropped, err := s.DeleteIndexEngine("byName")
	if err != nil || !dropped {
		t.Fatalf("DeleteIndexEngine = %v, %v", dropped, err)
	}
}

func TestStorePropertyFamily(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetProperty("retries", "3"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProperty("timeout", "30s"); err != nil {
		t.Fatal(err)
	}

	v, ok, err := s.GetProperty("retries")
	if err != nil || !ok || v != "3" {
		t.Fatalf("GetProperty(retries) = %q, ok=%v, err=%v", v, ok, err)
	}

	props, err := s.GetProperties()
	if err != nil || len(props) != 2 {
		t.Fatalf("GetProperties() = %v, %v", props, err)
	}

	if err := s.SetProperty("", "x"); err == nil {
		t.Fatal("expected SetProperty with empty name to fail")
	}

	if err := s.ClearProperties(); err != nil {
		t.Fatal(err)
	}
	props, err = s.GetProperties()
	if err != nil || len(props) != 0 {
		t.Fatalf("GetProperties() after ClearProperties = %v, %v", props, err)
	}
}

func TestStoreConfigurationBlobHidesSecrets(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetConfigurationProperty("storage.encryptionKey", "top-secret"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetConfigurationProperty("storage.cluster.minimumClusters", "8"); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.GetConfiguration()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cfg["storage.encryptionKey"]; ok {
		t.Fatal("hidden configuration key should not be readable back")
	}
	if cfg["storage.cluster.minimumClusters"] != "8" {
		t.Fatalf("cfg = %v", cfg)
	}

	v, err := s.ContextInt("storage.cluster.minimumClusters", -1)
	if err != nil || v != 8 {
		t.Fatalf("ContextInt = %d, %v", v, err)
	}
	if v, err := s.ContextInt("no.such.key", 42); err != nil || v != 42 {
		t.Fatalf("ContextInt fallback = %d, %v", v, err)
	}
}

func TestStoreDateFormatterCacheInvalidatesOnSet(t *testing.T) {
	s := newTestStore(t)

	f1, err := s.DateFormatter()
	if err != nil {
		t.Fatal(err)
	}
	f2, err := s.DateFormatter()
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 {
		t.Fatal("DateFormatter() should be cached across calls")
	}

	if err := s.SetDateFormat("dd/MM/yyyy"); err != nil {
		t.Fatal(err)
	}
	f3, err := s.DateFormatter()
	if err != nil {
		t.Fatal(err)
	}
	if f3 == f1 {
		t.Fatal("DateFormatter() should rebuild after SetDateFormat")
	}
	if f3.Pattern() != "dd/MM/yyyy" {
		t.Fatalf("Pattern() = %q", f3.Pattern())
	}
}

func TestStoreLocaleFallsBackToHostOnInvalidStoredValue(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetLocaleLanguage("???"); err != nil {
		t.Fatal(err)
	}
	loc, err := s.Locale()
	if err != nil {
		t.Fatal(err)
	}
	if loc != HostLocale() {
		t.Fatalf("Locale() = %+v, want host default %+v", loc, HostLocale())
	}
}

func TestStoreSnapshotAndSerializeTextRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetCluster(ClusterDescriptor{ID: 0, Name: "default", Compression: "nothing"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProperty("k", "v"); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Clusters) != 1 || snap.Clusters[0].Name != "default" {
		t.Fatalf("Snapshot().Clusters = %+v", snap.Clusters)
	}

	text, err := s.SerializeText(NetworkVersionMax)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseCatalogText(text, NetworkVersionMax)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.TimeZone != snap.TimeZone || parsed.Properties["k"] != "v" {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestStoreDump(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetProperty("k", "v"); err != nil {
		t.Fatal(err)
	}
	data, err := s.Dump()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty msgpack dump")
	}
}

func TestStoreUpdateListenerSeesCommittedWrites(t *testing.T) {
	s := newTestStore(t)
	var notified []string
	s.SetUpdateListener(func(key string) { notified = append(notified, key) })

	if err := s.SetProperty("a", "1"); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, k := range notified {
		if k == propertyKey("a") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected update listener to see property_a, got %v", notified)
	}
}

func TestStoreDeleteRefusesInMemory(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete(); err == nil {
		t.Fatal("expected Delete() on an in-memory store to fail")
	}
}
