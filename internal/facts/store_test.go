package facts

import (
	"testing"
	"time"

	"anna.local/annad/internal/model"
)

func TestUpsertAndGet(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	src := model.FactSource{Kind: model.SourceUserConfirmed, TranscriptID: "t1"}
	if err := s.Upsert(model.FactPreferredEditor, "nvim", src, 90, model.CacheStatic, now); err != nil {
		t.Fatal(err)
	}

	f, ok := s.Get(model.FactPreferredEditor)
	if !ok {
		t.Fatal("expected fact to be present")
	}
	if f.Value != "nvim" || f.Confidence != 90 {
		t.Fatalf("unexpected fact: %+v", f)
	}
}

func TestFresh_ExcludesStale(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	now := time.Now()
	src := model.FactSource{Kind: model.SourceProbeDerived}
	_ = s.Upsert(model.FactPackageTool, "yay", src, 80, model.CacheStatic, now)

	if _, ok := s.Fresh(model.FactPackageTool, now); !ok {
		t.Fatal("expected fresh fact immediately after upsert")
	}

	if err := s.MarkStale(model.FactPackageTool); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Fresh(model.FactPackageTool, now); ok {
		t.Fatal("expected stale fact to no longer be fresh")
	}
}

func TestLoadAll_ReadsPersistedFacts(t *testing.T) {
	dir := t.TempDir()
	s1, _ := New(dir)
	now := time.Now()
	_ = s1.Upsert(model.FactInitSystem, "systemd", model.FactSource{Kind: model.SourceProbeDerived}, 95, model.CacheStatic, now)

	s2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := s2.Get(model.FactInitSystem)
	if !ok || f.Value != "systemd" {
		t.Fatalf("expected persisted fact to reload, got %+v ok=%v", f, ok)
	}
}
