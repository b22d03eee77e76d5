package pkg

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

const runAppWorkspace = `<?xml version="1.0" encoding="UTF-8"?>
<project version="4">
  <component name="RunManager">
    <configuration name="Run app" type="PythonConfigurationType" factoryName="Python">
      <option name="SCRIPT_NAME" value="$PROJECT_DIR$/app.py" />
      <option name="PARAMETERS" value="--flag val" />
    </configuration>
    <configuration name="" type="PythonConfigurationType" factoryName="Python" />
  </component>
</project>
`

const emptyWorkspace = `<?xml version="1.0" encoding="UTF-8"?>
<project version="4">
  <component name="RunManager">
    <configuration name="Unit tests" type="tests" factoryName="Autodetect" />
  </component>
</project>
`

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	fn := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fn, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()

	fn := filepath.Join(dir, name)
	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		zf, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := zf.Write([]byte(contents)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestExtractFile(t *testing.T) {
	fn := writeFile(t, t.TempDir(), "workspace.xml", runAppWorkspace)

	src, err := Extract(fn)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	lcs := src.LaunchConfigurations()
	if len(lcs) != 1 {
		t.Fatalf("Expected 1 launch configuration; got %d", len(lcs))
	}
	lc := lcs[0]
	if lc.Name != "Run app" || lc.Type != "python" || lc.Program != "${workspaceFolder}/app.py" {
		t.Errorf("Unexpected launch configuration %+v", lc)
	}
	if len(lc.Args) != 2 || lc.Args[0] != "--flag" || lc.Args[1] != "val" {
		t.Errorf("Unexpected args %q", lc.Args)
	}

	if len(src.Workspaces) != 1 || src.Workspaces[0].Skipped != 1 {
		t.Errorf("Expected the nameless configuration to be skipped; got %+v", src.Workspaces)
	}
}

func TestExtractNoConfigurations(t *testing.T) {
	fn := writeFile(t, t.TempDir(), "workspace.xml", emptyWorkspace)

	src, err := Extract(fn)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if lcs := src.LaunchConfigurations(); lcs == nil || len(lcs) != 0 {
		t.Errorf("Expected no launch configurations; got %v", lcs)
	}
}

func TestExtractDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".idea/workspace.xml", emptyWorkspace)
	writeFile(t, dir, ".idea/runConfigurations/Run_app.xml", runAppWorkspace)
	writeFile(t, dir, ".idea/runConfigurations/notes.txt", runAppWorkspace)

	src, err := Extract(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if len(src.Workspaces) != 2 {
		t.Errorf("Expected 2 workspace files; got %d", len(src.Workspaces))
	}
	if lcs := src.LaunchConfigurations(); len(lcs) != 1 {
		t.Errorf("Expected 1 launch configuration; got %d", len(lcs))
	}
	if errs := src.Errors(); len(errs) != 0 {
		t.Errorf("Unexpected errors: %v", errs)
	}
}

func TestExtractMalformedSibling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.xml", runAppWorkspace)
	broken := writeFile(t, dir, "b.xml", "<project><component>")
	writeFile(t, dir, "c.xml", runAppWorkspace)

	src, err := Extract(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if lcs := src.LaunchConfigurations(); len(lcs) != 2 {
		t.Errorf("Expected 2 launch configurations; got %d", len(lcs))
	}

	errs := src.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error; got %v", errs)
	}
	if !IsMalformed(errs[0]) {
		t.Errorf("Expected a malformed source error; got: %s", errs[0])
	}
	if src.Workspaces[1].Filename != broken || src.Workspaces[1].Error == nil {
		t.Errorf("Expected the error to be recorded for %s; got %+v", broken, src.Workspaces[1])
	}
}

func TestExtractNotFound(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "workspace.xml"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected a source not found error; got: %v", err)
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "settings.zip", map[string]string{
		".idea/workspace.xml":                 runAppWorkspace,
		".idea/runConfigurations/Run_app.xml": runAppWorkspace,
		"README.md":                           "hello",
	})

	src, err := Extract(archive)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if lcs := src.LaunchConfigurations(); len(lcs) != 2 {
		t.Errorf("Expected 2 launch configurations from the archive; got %d", len(lcs))
	}

	src, err = Extract(archive + "/.idea/workspace.xml")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if lcs := src.LaunchConfigurations(); len(lcs) != 1 {
		t.Errorf("Expected 1 launch configuration from inside the archive; got %d", len(lcs))
	}

	_, err = Extract(archive + "/.idea/misc.xml")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected a source not found error; got: %v", err)
	}
}

func TestExtractDirectoryWithArchive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "workspace.xml", runAppWorkspace)
	writeZip(t, dir, "export.zip", map[string]string{
		"workspace.xml": runAppWorkspace,
	})

	src, err := Extract(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if lcs := src.LaunchConfigurations(); len(lcs) != 2 {
		t.Errorf("Expected 2 launch configurations; got %d", len(lcs))
	}
}

func TestExtractCorruptArchiveInDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "workspace.xml", runAppWorkspace)
	archive := writeFile(t, dir, "export.zip", "this is not a zip archive")

	src, err := Extract(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if lcs := src.LaunchConfigurations(); len(lcs) != 1 {
		t.Errorf("Expected 1 launch configuration; got %d", len(lcs))
	}

	errs := src.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected the corrupt archive to be reported; got %v", errs)
	}
	if !IsMalformed(errs[0]) {
		t.Errorf("Expected a malformed source error; got: %s", errs[0])
	}

	found := false
	for _, pw := range src.Workspaces {
		if pw.Filename == archive && pw.Error != nil {
			found = true
		}
	}
	if !found {
		t.Errorf("No failed workspace recorded for %s: %+v", archive, src.Workspaces)
	}
}

func TestWritable(t *testing.T) {
	good := ParsedWorkspace{Filename: "good.xml"}
	bad := ParsedWorkspace{Filename: "bad.xml", Error: errors.Wrap(ErrMalformedSource, "test")}

	cases := []struct {
		Name       string
		Workspaces []ParsedWorkspace
		Strict     bool
		Writable   bool
	}{
		{"nothing found", nil, false, true},
		{"nothing found, strict", nil, true, true},
		{"all good", []ParsedWorkspace{good, good}, false, true},
		{"all good, strict", []ParsedWorkspace{good, good}, true, true},
		{"some failed", []ParsedWorkspace{good, bad}, false, true},
		{"some failed, strict", []ParsedWorkspace{good, bad}, true, false},
		{"all failed", []ParsedWorkspace{bad, bad}, false, false},
		{"all failed, strict", []ParsedWorkspace{bad}, true, false},
	}

	for _, c := range cases {
		src := &Source{Workspaces: c.Workspaces}
		err := src.Writable(c.Strict)
		if c.Writable && err != nil {
			t.Errorf("%s: unexpected error: %s", c.Name, err)
		} else if !c.Writable && !IsMalformed(err) {
			t.Errorf("%s: expected a malformed source error; got: %v", c.Name, err)
		}
	}
}
