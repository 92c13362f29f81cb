package atomicconfig

import "testing"

func TestCreateLoadCloseDeleteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Logger: NewNopLogger(), IsTesting: true}

	s, err := Create(dir, "catalog", opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.SetProperty("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCluster(ClusterDescriptor{ID: 0, Name: "default"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := Load(dir, "catalog", opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, ok, err := loaded.GetProperty("greeting")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("GetProperty after reload = %q, ok=%v, err=%v", v, ok, err)
	}
	c, ok, err := loaded.GetCluster(0)
	if err != nil || !ok || c.Name != "default" {
		t.Fatalf("GetCluster after reload = %+v, ok=%v, err=%v", c, ok, err)
	}
	if err := loaded.Close(); err != nil {
		t.Fatalf("Close (loaded): %v", err)
	}

	if err := loaded.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Load(dir, "catalog", opts); err == nil {
		t.Fatal("expected Load to fail after Delete")
	}
}

func TestCreateRejectsExistingCatalog(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Logger: NewNopLogger(), IsTesting: true}

	s, err := Create(dir, "catalog", opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := Create(dir, "catalog", opts); err != ErrAlreadyExists {
		t.Fatalf("second Create = %v, want ErrAlreadyExists", err)
	}
}
