// Package persistence implements the corpus/crash file readers and
// writers: one YAML record per file, filenames timestamped (plus the
// target function for crashes).
package persistence

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

// WireValue is the YAML-serializable mirror of typedvalue.Value.
type WireValue struct {
	Kind       string        `yaml:"kind"`
	Uint       string        `yaml:"uint,omitempty"`
	Bool       bool          `yaml:"bool,omitempty"`
	ElemKind   string        `yaml:"elem_kind,omitempty"`
	Elements   []WireValue   `yaml:"elements,omitempty"`
	RefMutable bool          `yaml:"ref_mutable,omitempty"`
	Ref        *WireValue    `yaml:"ref,omitempty"`
	Function   *WireFunction `yaml:"function,omitempty"`
}

// WireFunction is the YAML-serializable mirror of a function descriptor.
type WireFunction struct {
	Name   string      `yaml:"name"`
	Params []WireValue `yaml:"params,omitempty"`
	Return *WireValue  `yaml:"return,omitempty"`
}

var kindNames = map[typedvalue.Kind]string{
	typedvalue.KindU8:       "u8",
	typedvalue.KindU16:      "u16",
	typedvalue.KindU32:      "u32",
	typedvalue.KindU64:      "u64",
	typedvalue.KindU128:     "u128",
	typedvalue.KindBool:     "bool",
	typedvalue.KindVector:   "vector",
	typedvalue.KindStruct:   "struct",
	typedvalue.KindRef:      "ref",
	typedvalue.KindFunction: "function",
}

var namesToKind = func() map[string]typedvalue.Kind {
	out := make(map[string]typedvalue.Kind, len(kindNames))
	for k, v := range kindNames {
		out[v] = k
	}
	return out
}()

// ValueToWire converts a typedvalue.Value into its YAML-serializable form.
func ValueToWire(v typedvalue.Value) WireValue {
	w := WireValue{Kind: kindNames[v.Kind()]}
	switch v.Kind() {
	case typedvalue.KindU8, typedvalue.KindU16, typedvalue.KindU32, typedvalue.KindU64, typedvalue.KindU128:
		u := v.AsUint256()
		w.Uint = u.Dec()
	case typedvalue.KindBool:
		w.Bool = v.AsBool()
	case typedvalue.KindVector:
		w.ElemKind = kindNames[v.ElementKind()]
		for _, e := range v.Elements() {
			w.Elements = append(w.Elements, ValueToWire(e))
		}
	case typedvalue.KindStruct:
		for _, e := range v.Elements() {
			w.Elements = append(w.Elements, ValueToWire(e))
		}
	case typedvalue.KindRef:
		w.RefMutable = v.RefMutable()
		ref := ValueToWire(v.Referent())
		w.Ref = &ref
	case typedvalue.KindFunction:
		fn := v.Function()
		wf := &WireFunction{Name: fn.Name}
		for _, p := range fn.Params {
			wf.Params = append(wf.Params, ValueToWire(p))
		}
		if fn.Return != nil {
			ret := ValueToWire(*fn.Return)
			wf.Return = &ret
		}
		w.Function = wf
	}
	return w
}

// WireToValue reconstructs a typedvalue.Value from its YAML form.
func WireToValue(w WireValue) (typedvalue.Value, error) {
	kind, ok := namesToKind[w.Kind]
	if !ok {
		return typedvalue.Value{}, fmt.Errorf("persistence: unknown value kind %q", w.Kind)
	}
	switch kind {
	case typedvalue.KindU8, typedvalue.KindU16, typedvalue.KindU32, typedvalue.KindU64, typedvalue.KindU128:
		var u uint256.Int
		if _, err := u.SetFromDecimal(w.Uint); err != nil {
			return typedvalue.Value{}, fmt.Errorf("persistence: parse uint %q: %w", w.Uint, err)
		}
		return typedvalue.NewUintFromBig(kind, &u), nil
	case typedvalue.KindBool:
		return typedvalue.NewBool(w.Bool), nil
	case typedvalue.KindVector:
		elemKind, ok := namesToKind[w.ElemKind]
		if !ok {
			return typedvalue.Value{}, fmt.Errorf("persistence: unknown vector element kind %q", w.ElemKind)
		}
		elems := make([]typedvalue.Value, len(w.Elements))
		for i, e := range w.Elements {
			ev, err := WireToValue(e)
			if err != nil {
				return typedvalue.Value{}, err
			}
			elems[i] = ev
		}
		return typedvalue.NewVector(elemKind, elems), nil
	case typedvalue.KindStruct:
		fields := make([]typedvalue.Value, len(w.Elements))
		for i, e := range w.Elements {
			fv, err := WireToValue(e)
			if err != nil {
				return typedvalue.Value{}, err
			}
			fields[i] = fv
		}
		return typedvalue.NewStruct(fields), nil
	case typedvalue.KindRef:
		if w.Ref == nil {
			return typedvalue.Value{}, fmt.Errorf("persistence: ref value missing referent")
		}
		referent, err := WireToValue(*w.Ref)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.NewRef(w.RefMutable, referent), nil
	case typedvalue.KindFunction:
		if w.Function == nil {
			return typedvalue.Value{}, fmt.Errorf("persistence: function value missing descriptor")
		}
		params := make([]typedvalue.Value, len(w.Function.Params))
		for i, p := range w.Function.Params {
			pv, err := WireToValue(p)
			if err != nil {
				return typedvalue.Value{}, err
			}
			params[i] = pv
		}
		var ret *typedvalue.Value
		if w.Function.Return != nil {
			rv, err := WireToValue(*w.Function.Return)
			if err != nil {
				return typedvalue.Value{}, err
			}
			ret = &rv
		}
		return typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: w.Function.Name, Params: params, Return: ret}), nil
	default:
		return typedvalue.Value{}, fmt.Errorf("persistence: unhandled kind %q", w.Kind)
	}
}

// decodeInputs converts a slice of WireValue back into typedvalue.Value,
// shared by the corpus and crash record readers.
func decodeInputs(ws []WireValue) ([]typedvalue.Value, error) {
	out := make([]typedvalue.Value, len(ws))
	for i, w := range ws {
		v, err := WireToValue(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
