// Package bundle persists compiled programs to disk: a single
// entry-point function, portable across hosts that share this VM's
// opcode set. The wire encoding itself lives in internal/vm (gob over
// the same object graph the VM executes, not a fixed binary layout);
// this package only adds the file-level read/write contract.
package bundle

import (
	"fmt"
	"os"

	"github.com/horizonanalytic/stratum/internal/vm"
)

// WriteFile encodes the already-compiled main, recorded under
// sourceFile's name, as a Bundle and writes it to path.
func WriteFile(path, sourceFile string, main *vm.FunctionObj) error {
	data, err := vm.Encode(&vm.Bundle{SourceFile: sourceFile, Main: main})
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bundle: write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a Bundle previously written by WriteFile.
func ReadFile(path string) (*vm.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", path, err)
	}
	b, err := vm.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("bundle: %s: %w", path, err)
	}
	return b, nil
}
