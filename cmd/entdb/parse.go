package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
	"github.com/hupe1980/entdb/value"
)

// parseValue parses "kind:literal" into a typed value. The kind prefix is
// optional and defaults to text, so plain strings work unannotated.
//
//	int:42  uint:7  float:3.14  bool:true  char:x
//	time:2026-01-02T15:04:05Z  text:hello  hello
func parseValue(s string) (value.Value, error) {
	kind, lit, ok := strings.Cut(s, ":")
	if !ok {
		return value.Text(s), nil
	}

	switch kind {
	case "int":
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("bad int %q: %w", lit, err)
		}
		return value.Int(n), nil
	case "uint":
		n, err := strconv.ParseUint(lit, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("bad uint %q: %w", lit, err)
		}
		return value.Uint(n), nil
	case "float":
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("bad float %q: %w", lit, err)
		}
		return value.Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return value.Value{}, fmt.Errorf("bad bool %q: %w", lit, err)
		}
		return value.Bool(b), nil
	case "char":
		runes := []rune(lit)
		if len(runes) != 1 {
			return value.Value{}, fmt.Errorf("char needs exactly one rune, got %q", lit)
		}
		return value.Char(runes[0]), nil
	case "time":
		t, err := time.Parse(time.RFC3339, lit)
		if err != nil {
			return value.Value{}, fmt.Errorf("bad time %q: %w", lit, err)
		}
		return value.Time(t), nil
	case "text":
		return value.Text(lit), nil
	default:
		// Not a kind prefix, just a colon in a plain string.
		return value.Text(s), nil
	}
}

// parseFieldFlag parses a --field flag of the form "name=kind:literal".
func parseFieldFlag(s string) (string, value.Value, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", value.Value{}, fmt.Errorf("field %q must look like name=value", s)
	}
	v, err := parseValue(raw)
	if err != nil {
		return "", value.Value{}, err
	}
	return name, v, nil
}

// parseEdgeFlag parses a --edge flag of the form "name=1,2,3". A single id
// yields a one edge, several a many edge.
func parseEdgeFlag(s string) (string, ent.EdgeValue, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", ent.EdgeValue{}, fmt.Errorf("edge %q must look like name=id[,id...]", s)
	}

	parts := strings.Split(raw, ",")
	ids := make([]core.ID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return "", ent.EdgeValue{}, fmt.Errorf("bad edge id %q: %w", p, err)
		}
		ids = append(ids, core.ID(n))
	}

	switch len(ids) {
	case 0:
		return name, ent.NoTarget(), nil
	case 1:
		return name, ent.One(ids[0]), nil
	default:
		return name, ent.Many(ids...), nil
	}
}

// parseWhereFlag parses a --where flag of the form "field:op:value".
func parseWhereFlag(s string) (query.Condition, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return query.Condition{}, fmt.Errorf("where %q must look like field:op:value", s)
	}

	field, op := parts[0], parts[1]
	raw := ""
	if len(parts) == 3 {
		raw = parts[2]
	}

	var pred query.Predicate
	switch op {
	case "contains", "has_prefix", "has_suffix", "matches":
		lit := textLiteral(raw)
		switch op {
		case "contains":
			pred = query.Contains(lit)
		case "has_prefix":
			pred = query.HasPrefix(lit)
		case "has_suffix":
			pred = query.HasSuffix(lit)
		case "matches":
			pred = query.Matches(lit)
		}
	default:
		v, err := parseValue(raw)
		if err != nil {
			return query.Condition{}, err
		}
		switch op {
		case "eq":
			pred = query.Eq(v)
		case "ne":
			pred = query.Ne(v)
		case "gt":
			pred = query.Gt(v)
		case "gte":
			pred = query.Gte(v)
		case "lt":
			pred = query.Lt(v)
		case "lte":
			pred = query.Lte(v)
		default:
			return query.Condition{}, fmt.Errorf("unknown operator %q", op)
		}
	}

	return query.Where(field, pred), nil
}

// textLiteral strips an optional "text:" kind prefix.
func textLiteral(raw string) string {
	if lit, ok := strings.CutPrefix(raw, "text:"); ok {
		return lit
	}
	return raw
}

func parseID(s string) (core.ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return core.Ephemeral, fmt.Errorf("bad ent id %q", s)
	}
	return core.ID(n), nil
}
