package build

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, tmpDir, source string) {
	t.Helper()
	os.WriteFile(filepath.Join(tmpDir, "minic.toml"), []byte(`[package]
name = "test"
version = "0.1.0"
`), 0644)
	os.WriteFile(filepath.Join(tmpDir, "main.minic"), []byte(source), 0644)
}

func TestBuildSingleModule(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir, "proc main() { var x u64 = 1 }")

	builder := NewBuilder(tmpDir)
	results, err := builder.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if _, ok := results["main"]; !ok {
		t.Fatalf("expected a result for module main, got %v", results)
	}

	mirFile := filepath.Join(tmpDir, "build", "mir", "main.mir")
	if _, err := os.Stat(mirFile); err != nil {
		t.Errorf("MIR dump not created: %v", err)
	}
}

func TestBuildTypeError(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir, "proc main() { set x = 1 }")

	builder := NewBuilder(tmpDir)
	if _, err := builder.Build(); err == nil {
		t.Fatal("expected a type error for assignment to an undefined local")
	}
}

func TestIncrementalBuildSkipsUnchangedDump(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir, `proc main() { var x u64 = 1 }`)

	builder := NewBuilder(tmpDir)
	if _, err := builder.Build(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}

	mirFile := filepath.Join(tmpDir, "build", "mir", "main.mir")
	info1, err := os.Stat(mirFile)
	if err != nil {
		t.Fatalf("dump missing after first build: %v", err)
	}

	if _, err := builder.Build(); err != nil {
		t.Fatalf("second build failed: %v", err)
	}

	info2, _ := os.Stat(mirFile)
	if !info1.ModTime().Equal(info2.ModTime()) {
		t.Error("MIR dump was regenerated even though the source didn't change")
	}

	os.WriteFile(filepath.Join(tmpDir, "main.minic"), []byte("proc main() { var x u64 = 2 }"), 0644)
	// A Builder's Loader caches parsed modules, so a fresh Builder is used to
	// pick up the new content.
	if _, err := NewBuilder(tmpDir).Build(); err != nil {
		t.Fatalf("third build failed: %v", err)
	}

	info3, _ := os.Stat(mirFile)
	if info2.ModTime().Equal(info3.ModTime()) {
		t.Error("MIR dump was not regenerated after source change")
	}
}
