package types

import (
	"src.crush.sh/pkg/eval"
	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/vals"
)

func dictPath(name string) []string { return eval.MethodPath(vals.DictKind, name) }

// DictMethods holds the methods of dicts and of dict types.
var DictMethods = eval.NewTypeMap()

func init() {
	m := DictMethods
	m.Declare(dictPath("new"), dictNew, false,
		"dict:new",
		"Construct a new dict",
		"    Examples:\n    my_dict := (dict string integer):new",
		eval.UnknownOutput)
	m.Declare(dictPath("len"), dictLen, false,
		"dict:len",
		"The number of mappings in the dict",
		"",
		eval.KnownOutput(vals.Integer))
	m.Declare(dictPath("empty"), dictEmpty, false,
		"dict:empty",
		"True if there are no mappings in the dict",
		"",
		eval.KnownOutput(vals.Bool))
	m.Declare(dictPath("clear"), dictClear, false,
		"dict:clear",
		"Remove all mappings from this dict",
		"",
		eval.UnknownOutput)
	m.Declare(dictPath("__setitem__"), dictSetItem, false,
		"dict[key] = value",
		"Create a new mapping or replace an existing one",
		"",
		eval.UnknownOutput)
	m.Declare(dictPath("__getitem__"), dictGetItem, false,
		"dict[key]",
		"Return the value the specified key is mapped to",
		"",
		eval.UnknownOutput)
	m.Declare(dictPath("remove"), dictRemove, false,
		"dict:remove key",
		"Remove a mapping from the dict",
		"",
		eval.UnknownOutput)
	m.Declare(dictPath("clone"), dictClone, false,
		"dict:clone",
		"Create a new dict with the same st of mappings as this one",
		"",
		eval.UnknownOutput)
	m.Declare(dictPath("__call__"), dictCallType, false,
		"dict key_type:type value_type:type",
		"Returns a dict type with the specifiec key and value types",
		"",
		eval.KnownOutput(vals.TypeT))
	m.Declare(dictPath("key_type"), dictKeyType, false,
		"dict:key_type",
		"Return the type of the keys in this dict",
		"",
		eval.KnownOutput(vals.TypeT))
	m.Declare(dictPath("value_type"), dictValueType, false,
		"dict:value_type",
		"Return the type of the values in this dict",
		"",
		eval.KnownOutput(vals.TypeT))
}

// Parameterizes the bare dict type. Parameterized dict types are returned
// unchanged when called without arguments.
func dictCallType(ctx *eval.Context) error {
	t, err := ctx.ThisType()
	if err != nil {
		return err
	}
	if t.Kind != vals.DictKind {
		return errs.BadValue{What: "this", Valid: "dict type", Actual: t.String()}
	}
	if !t.IsParameterized() {
		if err := ctx.Arguments.CheckLen(2); err != nil {
			return err
		}
		key, err := ctx.Arguments.Type(0)
		if err != nil {
			return err
		}
		value, err := ctx.Arguments.Type(1)
		if err != nil {
			return err
		}
		return ctx.Output.Send(vals.DictOf(key, value))
	}
	if len(ctx.Arguments) != 0 {
		return errs.BadValue{What: "this", Valid: "dict type without subtypes", Actual: t.String()}
	}
	key, value := t.DictParams()
	return ctx.Output.Send(vals.DictOf(key, value))
}

func dictNew(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	t, err := ctx.ThisType()
	if err != nil {
		return err
	}
	if t.Kind != vals.DictKind {
		return errs.BadValue{What: "this", Valid: "dict type", Actual: t.String()}
	}
	d, err := vals.NewDict(t.DictParams())
	if err != nil {
		return err
	}
	return ctx.Output.Send(d)
}

func dictSetItem(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(2); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return d.Insert(ctx.Arguments[0].Value, ctx.Arguments[1].Value)
}

func dictGetItem(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(1); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	if v, ok := d.Get(ctx.Arguments[0].Value); ok {
		return ctx.Output.Send(v)
	}
	return nil
}

func dictRemove(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(1); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	if v, ok := d.Remove(ctx.Arguments[0].Value); ok {
		return ctx.Output.Send(v)
	}
	return nil
}

func dictLen(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return ctx.Output.Send(d.Len())
}

func dictClear(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	d.Clear()
	return ctx.Output.Send(d)
}

func dictClone(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return ctx.Output.Send(d.Copy())
}

func dictEmpty(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return ctx.Output.Send(d.Len() == 0)
}

func dictKeyType(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return ctx.Output.Send(d.KeyType())
}

func dictValueType(ctx *eval.Context) error {
	if err := ctx.Arguments.CheckLen(0); err != nil {
		return err
	}
	d, err := ctx.ThisDict()
	if err != nil {
		return err
	}
	return ctx.Output.Send(d.ValueType())
}
