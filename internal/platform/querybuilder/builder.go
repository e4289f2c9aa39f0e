package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Query accumulates a SELECT statement with ?-style placeholders and
// renders them as Postgres $n arguments. Write statements in this
// codebase are plain SQL; the builder exists for list endpoints whose
// filters vary by call.
type Query struct {
	table   string
	columns []string
	wheres  []string
	args    []any
	orderBy []string
	limit   int
}

func Select(table string, columns ...string) *Query {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	return &Query{table: table, columns: columns}
}

// Where appends one condition. expr uses ? placeholders, one per arg.
func (q *Query) Where(expr string, args ...any) *Query {
	q.wheres = append(q.wheres, expr)
	q.args = append(q.args, args...)
	return q
}

func (q *Query) WhereNull(column string) *Query {
	q.wheres = append(q.wheres, column+" IS NULL")
	return q
}

func (q *Query) OrderBy(parts ...string) *Query {
	q.orderBy = append(q.orderBy, parts...)
	return q
}

func (q *Query) Limit(limit int) *Query {
	q.limit = limit
	return q
}

func (q *Query) SQL() (string, []any, error) {
	if strings.TrimSpace(q.table) == "" {
		return "", nil, fmt.Errorf("table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(q.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(q.table)

	if len(q.wheres) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(q.wheres, " AND "))
	}
	if len(q.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(q.orderBy, ", "))
	}
	if q.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(q.limit))
	}

	sql, err := rewritePlaceholders(buf.String(), len(q.args))
	if err != nil {
		return "", nil, err
	}
	return sql, q.args, nil
}

// rewritePlaceholders turns every ? into $1..$n and checks the count
// matches the collected args.
func rewritePlaceholders(sql string, argCount int) (string, error) {
	var buf strings.Builder
	buf.Grow(len(sql) + argCount*2)

	n := 0
	for _, r := range sql {
		if r != '?' {
			buf.WriteRune(r)
			continue
		}
		n++
		buf.WriteString("$")
		buf.WriteString(strconv.Itoa(n))
	}

	if n != argCount {
		return "", fmt.Errorf("placeholder count %d does not match arg count %d", n, argCount)
	}
	return buf.String(), nil
}
