// Package sqlbuilder composes PostgreSQL SELECT statements for the table
// layer.
//
// Conditions are written with "?" placeholders. [Builder.SQL] renumbers them
// to pgx's positional "$n" form, so builders can be cloned, extended and
// wrapped (see [Builder.CountQuery]) without tracking argument indexes by
// hand.
//
//	b := sqlbuilder.Select("c.id", sqlbuilder.As("s.code", "state.code")).
//	    From("calculation c").
//	    Join("LEFT JOIN calculation_state s ON s.id = c.state_id").
//	    Where("c.state_id = ?", 3).
//	    OrderBy("c.id", "desc").
//	    Limit(20)
//	query, args := b.SQL()
package sqlbuilder

import (
	"strconv"
	"strings"
)

// Cond is a single predicate with its arguments.
type Cond struct {
	Expr string
	Args []any
}

type orderTerm struct {
	expr string
	dir  string
}

// Builder is a mutable SELECT statement.
type Builder struct {
	columns  []string
	from     string
	fromArgs []any
	joins    []string
	where    []Cond
	groupBy  []string
	orders   []orderTerm
	limit    int
	offset   int
}

// Select starts a new statement with the given projection.
func Select(columns ...string) *Builder {
	return &Builder{columns: append([]string(nil), columns...)}
}

// Columns appends to the projection.
func (b *Builder) Columns(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// From sets the FROM clause, alias included ("calculation c").
func (b *Builder) From(table string) *Builder {
	b.from = table
	return b
}

// Join appends a complete join clause.
func (b *Builder) Join(clause string) *Builder {
	b.joins = append(b.joins, clause)
	return b
}

// Where adds a predicate. All predicates are combined with AND.
func (b *Builder) Where(expr string, args ...any) *Builder {
	b.where = append(b.where, Cond{Expr: expr, Args: args})
	return b
}

// WhereOr adds one predicate made of the given conditions joined with OR.
// Nothing is added when conds is empty.
func (b *Builder) WhereOr(conds ...Cond) *Builder {
	switch len(conds) {
	case 0:
		return b
	case 1:
		return b.Where(conds[0].Expr, conds[0].Args...)
	}

	parts := make([]string, len(conds))
	var args []any
	for i, c := range conds {
		parts[i] = c.Expr
		args = append(args, c.Args...)
	}
	return b.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// WhereCount returns the number of AND-ed predicates.
func (b *Builder) WhereCount() int {
	return len(b.where)
}

// GroupBy appends grouping expressions.
func (b *Builder) GroupBy(exprs ...string) *Builder {
	b.groupBy = append(b.groupBy, exprs...)
	return b
}

// OrderBy appends a sort term. Any direction other than "desc"
// (case-insensitive) sorts ascending.
func (b *Builder) OrderBy(expr, dir string) *Builder {
	d := "ASC"
	if strings.EqualFold(dir, "desc") {
		d = "DESC"
	}
	b.orders = append(b.orders, orderTerm{expr: expr, dir: d})
	return b
}

// HasOrder reports whether expr is already a sort term.
func (b *Builder) HasOrder(expr string) bool {
	for _, o := range b.orders {
		if o.expr == expr {
			return true
		}
	}
	return false
}

// ResetOrder removes all sort terms.
func (b *Builder) ResetOrder() *Builder {
	b.orders = nil
	return b
}

// Limit sets the row limit. Zero or negative removes it.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.limit = n
	return b
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.offset = n
	return b
}

// Clone returns an independent copy of the statement.
func (b *Builder) Clone() *Builder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.fromArgs = append([]any(nil), b.fromArgs...)
	c.joins = append([]string(nil), b.joins...)
	c.groupBy = append([]string(nil), b.groupBy...)
	c.orders = append([]orderTerm(nil), b.orders...)
	c.where = make([]Cond, len(b.where))
	for i, w := range b.where {
		c.where[i] = Cond{Expr: w.Expr, Args: append([]any(nil), w.Args...)}
	}
	return &c
}

// CountQuery returns a statement counting the rows b would return, ignoring
// its ordering and paging. Grouped statements are wrapped in a sub-select.
func (b *Builder) CountQuery() *Builder {
	c := b.Clone()
	c.orders = nil
	c.limit = 0
	c.offset = 0

	if len(c.groupBy) == 0 {
		c.columns = []string{"COUNT(*)"}
		return c
	}

	inner, args := c.raw()
	return &Builder{
		columns:  []string{"COUNT(*)"},
		from:     "(" + inner + ") AS counted",
		fromArgs: args,
	}
}

// SQL renders the statement with positional placeholders.
func (b *Builder) SQL() (string, []any) {
	raw, args := b.raw()
	return renumber(raw), args
}

// raw renders the statement keeping "?" placeholders.
func (b *Builder) raw() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}

	if b.from != "" {
		sb.WriteString(" FROM ")
		sb.WriteString(b.from)
	}

	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}

	args = append(args, b.fromArgs...)

	preds := make([]string, 0, len(b.where))
	for _, w := range b.where {
		preds = append(preds, w.Expr)
		args = append(args, w.Args...)
	}
	if len(preds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(preds, " AND "))
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orders) > 0 {
		parts := make([]string, len(b.orders))
		for i, o := range b.orders {
			parts[i] = o.expr + " " + o.dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}

	return sb.String(), args
}

// renumber replaces "?" outside quoted sections with $1..$n.
func renumber(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			sb.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			sb.WriteByte(ch)
		case ch == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// QuoteIdentifier quotes a SQL identifier to prevent injection.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// As renders "expr AS "alias"".
func As(expr, alias string) string {
	return expr + " AS " + QuoteIdentifier(alias)
}

// Like returns a case-insensitive substring predicate on expr. LIKE
// wildcards in term are matched literally.
func Like(expr, term string) Cond {
	return Cond{
		Expr: "CAST(" + expr + " AS TEXT) ILIKE ?",
		Args: []any{"%" + EscapeLike(term) + "%"},
	}
}

// EscapeLike escapes the LIKE metacharacters %, _ and \.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
