package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/scenesmith/internal/ir"
)

// Columns are the instance columns every compiled query selects, in scan
// order.
const Columns = "i.run_id, i.event_id, i.template_key, i.x, i.y"

// orderBy is appended to every compiled query.
const orderBy = " ORDER BY r.seq ASC, i.seq ASC"

// Compile validates q and converts it to parameterized SQL.
// Returns (sql, params, error).
func Compile(q Select) (string, []any, error) {
	if errs := Validate(q); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return "", nil, fmt.Errorf("invalid query: %w", errors.Join(joined...))
	}

	var b strings.Builder
	b.WriteString("SELECT " + Columns + " FROM instances i JOIN runs r ON r.id = i.run_id")

	var params []any
	if q.Filter != nil {
		where, filterParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = filterParams
	}

	b.WriteString(orderBy)

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
// Values are never interpolated.
func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case Prefix:
		return compilePrefix(pred)
	case *Prefix:
		return compilePrefix(*pred)
	case Within:
		return compileWithin(pred)
	case *Within:
		return compileWithin(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return fmt.Sprintf("i.%s = ?", eq.Field), []any{param}, nil
}

// compilePrefix uses substr rather than LIKE so that '%' and '_' in the
// prefix match literally.
func compilePrefix(p Prefix) (string, []any, error) {
	return fmt.Sprintf("substr(i.%s, 1, ?) = ?", p.Field), []any{len(p.Prefix), p.Prefix}, nil
}

func compileWithin(w Within) (string, []any, error) {
	return "i.x >= ? AND i.x < ? AND i.y >= ? AND i.y < ?",
		[]any{w.X, w.X + w.W, w.Y, w.Y + w.H}, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, ps, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// irValueToParam converts an IR scalar to a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
