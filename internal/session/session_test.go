package session

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"modpack-merger/internal/cache"
	"modpack-merger/internal/emit"
	"modpack-merger/ui"
)

type fakeSink struct {
	messages []string
}

func (f *fakeSink) Log(message string, severity ui.Severity) {
	f.messages = append(f.messages, message)
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return buildZip(map[string]string{"fabric.mod.json": `{"id":"remote-mod","version":"1.0.0"}`}), nil
}

func buildZip(files map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	zw.Close()
	return buf.Bytes()
}

// buildPackWithModJar wraps a fabric.mod.json manifest in its own inner
// jar, then packages that jar under mods/<name> inside a standard pack
// archive, so deep analysis has a real nested archive entry to parse.
func buildPackWithModJar(name, fabricJSON string) []byte {
	jar := buildZip(map[string]string{"fabric.mod.json": fabricJSON})
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("mods/" + name)
	w.Write(jar)
	zw.Close()
	return buf.Bytes()
}

func newTestSession() *Session {
	return New(cache.New(), fakeFetcher{}, &fakeSink{}, 5)
}

func TestLoadPackSoftSkipsDuplicateName(t *testing.T) {
	s := newTestSession()
	raw := buildZip(map[string]string{"mods/foo.jar": "x"})
	if err := s.LoadPack("Pack A", raw); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := s.LoadPack("Pack A", raw); err != nil {
		t.Fatalf("duplicate load should soft-skip, not error: %v", err)
	}
	if len(s.Packs) != 1 {
		t.Fatalf("expected exactly one pack, got %d", len(s.Packs))
	}
}

func TestLoadPackRunsQuickAnalysis(t *testing.T) {
	s := newTestSession()
	rawA := buildZip(map[string]string{"mods/foo.jar": "a"})
	rawB := buildZip(map[string]string{"mods/foo.jar": "b"})

	if err := s.LoadPack("A", rawA); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadPack("B", rawB); err != nil {
		t.Fatal(err)
	}

	fileA := &s.Packs[0].Files[0]
	fileB := &s.Packs[1].Files[0]
	if !fileA.Enabled {
		t.Error("expected pack A's file enabled")
	}
	if fileB.Enabled || fileB.ConflictReason != "exact path duplicate" {
		t.Errorf("expected pack B's file excluded as exact path duplicate, got %+v", fileB)
	}
}

func TestRemovePackRemovesItsFiles(t *testing.T) {
	s := newTestSession()
	raw := buildZip(map[string]string{"mods/foo.jar": "a"})
	if err := s.LoadPack("A", raw); err != nil {
		t.Fatal(err)
	}
	id := s.Packs[0].ID
	if err := s.RemovePack(id); err != nil {
		t.Fatalf("RemovePack: %v", err)
	}
	if len(s.Packs) != 0 {
		t.Errorf("expected no packs left, got %d", len(s.Packs))
	}
	if err := s.RemovePack(id); err == nil {
		t.Error("expected error removing an already-removed pack id")
	}
}

func TestReorderOutOfRangeError(t *testing.T) {
	s := newTestSession()
	raw := buildZip(map[string]string{"mods/foo.jar": "a"})
	if err := s.LoadPack("A", raw); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(0, DirectionUp); err == nil {
		t.Error("expected out-of-range reorder to fail")
	}
}

func TestDeepAnalysisRefusedOnCompatIssues(t *testing.T) {
	s := newTestSession()
	headRaw := buildZip(map[string]string{"instance.cfg": "IntendedVersion=1.20.1\nLWJGL\nFabric"})
	otherRaw := buildZip(map[string]string{"instance.cfg": "IntendedVersion=1.19.2\nLWJGL"})

	if err := s.LoadPack("Head", headRaw); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadPack("Other", otherRaw); err != nil {
		t.Fatal(err)
	}
	if len(s.CompatIssues) == 0 {
		t.Fatal("expected compat issues between mismatched packs")
	}

	if err := s.RequestDeepAnalysis(context.Background()); err == nil {
		t.Error("expected deep analysis to be refused while compat issues exist")
	}
}

func TestDeepAnalysisPopulatesMetadataAndDependencyIssues(t *testing.T) {
	s := newTestSession()
	raw := buildPackWithModJar("a.jar", `{"id":"a","version":"1.0.0","depends":{"b":">=2.0.0"}}`)
	if err := s.LoadPack("A", raw); err != nil {
		t.Fatal(err)
	}

	if err := s.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatalf("RequestDeepAnalysis: %v", err)
	}
	if !s.DeepAnalysisPerformed() {
		t.Error("expected deep analysis to be marked performed")
	}
	if s.Packs[0].Files[0].Metadata == nil {
		t.Fatal("expected metadata to be populated after deep analysis")
	}
	if len(s.DependencyIssues) != 1 || s.DependencyIssues[0].ModID != "b" {
		t.Errorf("expected one missing-dependency issue for b, got %+v", s.DependencyIssues)
	}
}

func TestStateChangeInvalidatesDeepAnalysis(t *testing.T) {
	s := newTestSession()
	raw := buildPackWithModJar("a.jar", `{"id":"a","version":"1.0.0"}`)
	if err := s.LoadPack("A", raw); err != nil {
		t.Fatal(err)
	}

	if err := s.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.DeepAnalysisPerformed() {
		t.Fatal("expected deep analysis performed before invalidation")
	}

	raw2 := buildPackWithModJar("c.jar", `{"id":"c","version":"1.0.0"}`)
	if err := s.LoadPack("B", raw2); err != nil {
		t.Fatal(err)
	}
	if s.DeepAnalysisPerformed() {
		t.Error("loading a new pack must invalidate the deep-analysis cache")
	}
}

func TestEmitRefusedOnCompatIssues(t *testing.T) {
	s := newTestSession()
	headRaw := buildZip(map[string]string{"instance.cfg": "IntendedVersion=1.20.1\nLWJGL\nFabric"})
	otherRaw := buildZip(map[string]string{"instance.cfg": "IntendedVersion=1.19.2\nLWJGL"})
	if err := s.LoadPack("Head", headRaw); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadPack("Other", otherRaw); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := s.RequestEmit(context.Background(), emit.Options{Mode: emit.ModeFullArchive}, &out); err == nil {
		t.Error("expected emit to be refused while compat issues exist")
	}
}
