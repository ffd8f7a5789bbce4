package vm

// getField implements §4.6.3's GetField contract: field lookup by name
// on a struct or enum (struct-shaped variant); missing field is a
// catchable NoSuchField exception. Maps reject GetField (they use
// GetIndex).
func (vm *VM) getField(recv Value, name string) (Value, error) {
	switch o := recv.Obj.(type) {
	case *StructObj:
		if v, ok := o.Fields[name]; ok {
			return v, nil
		}
		return Value{}, vm.runtimeException("NoSuchField", "struct %s has no field %q", o.TypeName, name)
	case *EnumObj:
		if v, ok := o.Fields[name]; ok {
			return v, nil
		}
		return Value{}, vm.runtimeException("NoSuchField", "variant %s has no field %q", o.VariantName, name)
	case *MapObj:
		return Value{}, vm.runtimeException("TypeError", "use [] to index a Map, not .%s", name)
	}
	return Value{}, vm.runtimeException("NoSuchField", "type %s has no field %q", TypeName(recv), name)
}

// getIndex implements §4.6.3's GetIndex contract: list indices support
// negative-from-end addressing with bounds checking; map lookups of a
// missing key return Null (matching null-safe idioms); tuple indices
// must be Int constants.
func (vm *VM) getIndex(recv, index Value) (Value, error) {
	switch o := recv.Obj.(type) {
	case *ListObj:
		i, err := vm.resolveListIndex(len(o.Elems), index)
		if err != nil {
			return Value{}, err
		}
		return o.Elems[i], nil
	case *TupleObj:
		i, err := vm.resolveListIndex(len(o.Elems), index)
		if err != nil {
			return Value{}, err
		}
		return o.Elems[i], nil
	case *MapObj:
		if v, ok := o.Get(index); ok {
			return v, nil
		}
		return NullVal(), nil
	}
	return Value{}, vm.runtimeException("NotIndexable", "type %s is not indexable", TypeName(recv))
}

func (vm *VM) resolveListIndex(n int, index Value) (int, error) {
	if index.Kind != KInt {
		return 0, vm.runtimeException("InvalidIndexType", "index must be Int, got %s", TypeName(index))
	}
	i := int(index.AsInt())
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, vm.runtimeException("OutOfBounds", "index %d out of bounds for length %d", index.AsInt(), n)
	}
	return i, nil
}

func (vm *VM) setIndex(recv, index, val Value) error {
	switch o := recv.Obj.(type) {
	case *ListObj:
		i, err := vm.resolveListIndex(len(o.Elems), index)
		if err != nil {
			return err
		}
		o.Elems[i] = val
		return nil
	case *MapObj:
		o.Set(index, val)
		return nil
	}
	return vm.runtimeException("NotIndexable", "type %s is not indexable", TypeName(recv))
}

// makeIterator implements §4.6.3's GetIter contract: lists iterate
// elements in order, maps yield (key, value) tuples in insertion
// order, ranges step through integers, strings iterate Unicode scalar
// values. Iterators are single-pass.
func makeIterator(src Value) *IteratorObj {
	switch o := src.Obj.(type) {
	case *ListObj:
		i := 0
		return &IteratorObj{Next: func() (Value, bool) {
			if i >= len(o.Elems) {
				return Value{}, false
			}
			v := o.Elems[i]
			i++
			return v, true
		}}
	case *MapObj:
		i := 0
		pairs := o.Pairs()
		return &IteratorObj{Next: func() (Value, bool) {
			if i >= len(pairs) {
				return Value{}, false
			}
			p := pairs[i]
			i++
			return ObjVal(&TupleObj{Elems: []Value{p.Key, p.Value}}), true
		}}
	case *RangeObj:
		cur := o.Start
		end := o.End
		if o.Inclusive {
			end++
		}
		return &IteratorObj{Next: func() (Value, bool) {
			if cur >= end {
				return Value{}, false
			}
			v := IntVal(cur)
			cur++
			return v, true
		}}
	case *StringObj:
		runes := []rune(o.S)
		i := 0
		return &IteratorObj{Next: func() (Value, bool) {
			if i >= len(runes) {
				return Value{}, false
			}
			v := StringVal(string(runes[i]))
			i++
			return v, true
		}}
	}
	return &IteratorObj{Next: func() (Value, bool) { return Value{}, false }}
}
