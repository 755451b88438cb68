package emit

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"modpack-merger/internal/archive"
	"modpack-merger/internal/cache"
	"modpack-merger/internal/modpack"
)

func buildPackZip(t *testing.T, files map[string]string) *archive.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	zw.Close()
	r, err := archive.Open(buf.Bytes())
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	return r
}

func readZip(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("readZip: %v", err)
	}
	return zr
}

func TestEmitFullArchive(t *testing.T) {
	archiveReader := buildPackZip(t, map[string]string{"mods/foo.jar": "foo-bytes"})
	pack := &modpack.Pack{
		ID: "p1", Name: "Pack", Archive: archiveReader,
		Files: []modpack.FileRecord{{
			Path: "mods/foo.jar", FileName: "foo.jar", Enabled: true,
			Origin: modpack.Origin{Local: &modpack.LocalOrigin{EntryPath: "mods/foo.jar"}},
		}},
	}

	var out bytes.Buffer
	c := cache.New()
	err := Run(context.Background(), []*modpack.Pack{pack}, Options{Mode: ModeFullArchive}, c, nil, &out, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	zr := readZip(t, out.Bytes())
	if len(zr.File) != 1 || zr.File[0].Name != "mods/foo.jar" {
		t.Fatalf("unexpected output entries: %+v", zr.File)
	}
	rc, _ := zr.File[0].Open()
	data := make([]byte, 9)
	rc.Read(data)
	if string(data) != "foo-bytes" {
		t.Errorf("entry content = %q", data)
	}
}

func TestEmitFullArchiveSkipsDisabledFiles(t *testing.T) {
	archiveReader := buildPackZip(t, map[string]string{"mods/foo.jar": "x"})
	pack := &modpack.Pack{
		ID: "p1", Archive: archiveReader,
		Files: []modpack.FileRecord{{
			Path: "mods/foo.jar", Enabled: false,
			Origin: modpack.Origin{Local: &modpack.LocalOrigin{EntryPath: "mods/foo.jar"}},
		}},
	}
	var out bytes.Buffer
	if err := Run(context.Background(), []*modpack.Pack{pack}, Options{Mode: ModeFullArchive}, cache.New(), nil, &out, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	zr := readZip(t, out.Bytes())
	if len(zr.File) != 0 {
		t.Errorf("expected no entries, got %+v", zr.File)
	}
}

func TestEmitIndexDescriptorMode(t *testing.T) {
	archiveReader := buildPackZip(t, map[string]string{"config/foo.toml": "setting=1"})
	pack := &modpack.Pack{
		ID: "p1", Name: "Indexed Pack", Type: modpack.TypeIndexed, Archive: archiveReader,
		MinecraftVersion: "1.20.1", Loader: modpack.LoaderFabric,
		Files: []modpack.FileRecord{
			{
				Path: "mods/remote.jar", FileName: "remote.jar", Enabled: true,
				Origin: modpack.Origin{Remote: &modpack.RemoteOrigin{
					URLs: []string{"https://example.com/remote.jar"},
					Descriptor: modpack.IndexFileDescriptor{
						Path: "mods/remote.jar", Downloads: []string{"https://example.com/remote.jar"}, FileSize: 42,
					},
				}},
			},
			{
				Path: "config/foo.toml", FileName: "foo.toml", Enabled: true,
				Origin: modpack.Origin{Local: &modpack.LocalOrigin{EntryPath: "config/foo.toml"}},
			},
		},
	}

	var out bytes.Buffer
	opts := Options{Mode: ModeIndexDescriptor, VersionID: "v1", Name: "Merged Pack"}
	if err := Run(context.Background(), []*modpack.Pack{pack}, opts, cache.New(), nil, &out, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	zr := readZip(t, out.Bytes())
	var sawIndex, sawOverride, sawRemoteBytes bool
	for _, f := range zr.File {
		if f.Name == "modrinth.index.json" {
			sawIndex = true
			rc, _ := f.Open()
			var desc modpack.IndexDescriptor
			if err := json.NewDecoder(rc).Decode(&desc); err != nil {
				t.Fatalf("decode index: %v", err)
			}
			if len(desc.Files) != 1 || desc.Files[0].Path != "mods/remote.jar" {
				t.Errorf("descriptor files = %+v", desc.Files)
			}
			if desc.Dependencies["minecraft"] != "1.20.1" {
				t.Errorf("dependencies = %+v", desc.Dependencies)
			}
		}
		if f.Name == "overrides/config/foo.toml" {
			sawOverride = true
		}
		if f.Name == "mods/remote.jar" {
			sawRemoteBytes = true
		}
	}
	if !sawIndex || !sawOverride {
		t.Fatalf("expected index + override entries, got %+v", zr.File)
	}
	if sawRemoteBytes {
		t.Error("remote mod bytes must not appear in the index-mode output archive")
	}
}
