// Package sqlparser parses the two SQL fragments the reader needs: SELECT
// statements issued by the user and CREATE TABLE definitions stored in the
// schema table. Both use participle grammars with dedicated lexers.
package sqlparser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/juju/errors"
)

// SelectStatement is the parsed form of `SELECT <columns> FROM <table>`
// with an optional WHERE clause. The executor rejects WHERE; it is parsed
// so the rejection can be precise instead of a syntax error.
type SelectStatement struct {
	Columns []ResultColumn `parser:"'SELECT' @@ ( ',' @@ )*"`
	From    string         `parser:"'FROM' @Ident"`
	Where   *WhereClause   `parser:"( 'WHERE' @@ )?"`
}

// ResultColumn is one entry of the select list: `*`, `COUNT(*)`, or a
// column name.
type ResultColumn struct {
	Star  bool   `parser:"  @'*'"`
	Count bool   `parser:"| @('COUNT' '(' '*' ')')"`
	Name  string `parser:"| @Ident"`
}

// WhereClause is a single comparison; it is captured, never evaluated.
type WhereClause struct {
	Left  string `parser:"@Ident"`
	Op    string `parser:"@Operator"`
	Right string `parser:"( @Ident | @Number | @String )"`
}

var selectLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(SELECT|FROM|WHERE|COUNT)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `'[^']*'`},
	{Name: "Operator", Pattern: `<=|>=|!=|=|<|>`},
	{Name: "Punct", Pattern: `[(),*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var selectParser = participle.MustBuild[SelectStatement](
	participle.Lexer(selectLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// ParseSelect parses one SELECT statement. A trailing semicolon is allowed.
func ParseSelect(sql string) (*SelectStatement, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(sql), "; \t\r\n")
	stmt, err := selectParser.ParseString("", trimmed)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid SELECT statement %q", sql)
	}
	return stmt, nil
}
