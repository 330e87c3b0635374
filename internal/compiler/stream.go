package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/hubstream/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Schema compiles the stream definition schema in ctx.
func Schema(ctx *cue.Context) cue.Value {
	return ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
}

// CompileStreams unifies v with the stream schema and compiles every field
// of its top-level "streams" struct, in declaration order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`streams: mine: queries: ["assignee:me is:open"]`)
//	specs, err := CompileStreams(v)
//
// A missing "streams" struct yields no specs and no error.
func CompileStreams(v cue.Value) ([]ir.StreamSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := v.Unify(Schema(v.Context()))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	streamsVal := unified.LookupPath(cue.ParsePath("streams"))
	if !streamsVal.Exists() {
		return []ir.StreamSpec{}, nil
	}

	iter, err := streamsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	specs := []ir.StreamSpec{}
	for iter.Next() {
		spec, err := CompileStream(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileStream parses one stream struct into a StreamSpec. The stream
// name is the struct's label.
func CompileStream(v cue.Value) (*ir.StreamSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.StreamSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}
	if spec.Name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "stream name is required",
			Pos:     v.Pos(),
		}
	}
	spec.ID = ir.StreamID(spec.Name)

	queriesVal := v.LookupPath(cue.ParsePath("queries"))
	if !queriesVal.Exists() {
		return nil, &CompileError{
			Field:   "queries",
			Message: fmt.Sprintf("stream %q: queries is required", spec.Name),
			Pos:     v.Pos(),
		}
	}
	queries, err := parseStrings(queriesVal)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, &CompileError{
			Field:   "queries",
			Message: fmt.Sprintf("stream %q: at least one query is required", spec.Name),
			Pos:     queriesVal.Pos(),
		}
	}
	spec.Queries = queries

	if spec.Filter, err = optionalString(v, "filter"); err != nil {
		return nil, err
	}
	if spec.Color, err = optionalString(v, "color"); err != nil {
		return nil, err
	}

	return spec, nil
}

func parseStrings(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}
