package model

import "slices"

// Merge folds src into dst and returns dst.
//
// Rules, applied per entity key and recursively per member key:
//   - keyed collections merge key by key; keys new to dst are appended in
//     src order, keys present in both are merged recursively
//   - name sets and argument lists are unioned, keeping first-seen order
//   - scalar fields (types, visibility, mode, static flag) take src's value
//
// src is never mutated and shares no memory with dst afterwards. Merging a
// model with itself is a no-op.
func Merge(dst, src *Model) *Model {
	if dst == src {
		src = src.Clone()
	}
	for name, c := range src.Classes.All() {
		if old, ok := dst.Classes.Get(name); ok {
			mergeClass(old, c)
		} else {
			dst.Classes.Set(name, cloneClass(c))
		}
	}
	for name, e := range src.Enums.All() {
		if old, ok := dst.Enums.Get(name); ok {
			mergeEnum(old, e)
		} else {
			dst.Enums.Set(name, cloneEnum(e))
		}
	}
	for name, f := range src.Functions.All() {
		if old, ok := dst.Functions.Get(name); ok {
			mergeFunction(old, f)
		} else {
			dst.Functions.Set(name, cloneFunction(f))
		}
	}
	for name, g := range src.Globals.All() {
		if old, ok := dst.Globals.Get(name); ok {
			old.Type = g.Type
		} else {
			cp := *g
			dst.Globals.Set(name, &cp)
		}
	}
	return dst
}

func mergeClass(dst, src *Class) {
	mergeKeyed(&dst.Attributes, src.Attributes, replace[Attribute])
	mergeKeyed(&dst.Properties, src.Properties, replace[Property])
	mergeKeyed(&dst.Methods, src.Methods, mergeMethod)
	dst.InheritFrom.Union(src.InheritFrom)
	dst.Aggregate.Union(src.Aggregate)
	dst.Composite.Union(src.Composite)
}

func mergeEnum(dst, src *Enum) {
	dst.Values.Union(src.Values)
	mergeKeyed(&dst.Methods, src.Methods, mergeMethod)
	mergeKeyed(&dst.Properties, src.Properties, replace[Property])
}

func mergeFunction(dst, src *Function) {
	dst.Args = unionArgs(dst.Args, src.Args)
	dst.ReturnType = src.ReturnType
}

// mergeKeyed merges src into dst entry by entry. Keys new to dst are merged
// against the zero value so merge also serves as the copy.
func mergeKeyed[V any](dst *OrderedMap[V], src OrderedMap[V], merge func(old, v V) V) {
	for k, v := range src.All() {
		old, _ := dst.Get(k)
		dst.Set(k, merge(old, v))
	}
}

func replace[V any](_, v V) V { return v }

func mergeMethod(old, v Method) Method {
	return Method{
		Args:       unionArgs(old.Args, v.Args),
		ReturnType: v.ReturnType,
		IsStatic:   v.IsStatic,
		Visibility: v.Visibility,
	}
}

func unionArgs(a, b []Arg) []Arg {
	out := make([]Arg, 0, len(a)+len(b))
	out = append(out, a...)
	for _, arg := range b {
		if !slices.Contains(out, arg) {
			out = append(out, arg)
		}
	}
	return out
}
