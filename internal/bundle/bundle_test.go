package bundle

import (
	"path/filepath"
	"testing"

	"github.com/horizonanalytic/stratum/internal/vm"
)

func TestWriteFileThenReadFileRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.strbundle")
	main := &vm.FunctionObj{Name: "<module>", Chunk: vm.NewChunk()}

	if err := WriteFile(path, "main.strat", main); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.SourceFile != "main.strat" {
		t.Errorf("got source file %q, want %q", got.SourceFile, "main.strat")
	}
	if got.Main.Name != "<module>" {
		t.Errorf("got main name %q, want %q", got.Main.Name, "<module>")
	}
}

func TestReadFileMissingPathErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "does-not-exist.strbundle"))
	if err == nil {
		t.Fatalf("expected an error reading a nonexistent bundle file")
	}
}
