package vm

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

func init() {
	gob.Register(&StringObj{})
	gob.Register(&ListObj{})
	gob.Register(&MapObj{})
	gob.Register(&TupleObj{})
	gob.Register(&StructObj{})
	gob.Register(&EnumObj{})
	gob.Register(&RangeObj{})
	gob.Register(&FunctionObj{})
	gob.Register(&ClosureObj{})
}

// Bundle is the serialized form of a compiled program per §6: the
// entry chunk plus its source file name, portable across hosts that
// share this VM's opcode set.
type Bundle struct {
	SourceFile string
	Main       *FunctionObj
}

// Encode serializes b using gob, the same approach the teacher's
// bundle format takes for its own compiled-chunk persistence.
func Encode(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a Bundle previously produced by Encode.
func Decode(data []byte) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}
