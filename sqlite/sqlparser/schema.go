package sqlparser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/juju/errors"
)

// CreateTableStatement is the parsed form of a CREATE TABLE definition as
// stored in the schema table's sql column.
type CreateTableStatement struct {
	IfNotExists bool        `parser:"'CREATE' 'TABLE' @('IF' 'NOT' 'EXISTS')?"`
	Name        string      `parser:"@(QuotedIdent | Ident)"`
	Columns     []ColumnDef `parser:"'(' @@ ( ',' @@ )* ')'"`
}

// ColumnDef is one column definition: the name followed by its type and
// constraint words. Parenthesized type arguments like VARCHAR(255) and
// literal defaults are consumed but not captured.
type ColumnDef struct {
	Name  string   `parser:"@(QuotedIdent | Ident)"`
	Attrs []string `parser:"( @(Ident | Keyword) | @Number | '(' ( Number ( ',' Number )? | String )? ')' )*"`
}

// IsRowIDAlias reports whether this column is a declared INTEGER PRIMARY
// KEY, i.e. an alias for the cell rowid with no stored record value.
func (c *ColumnDef) IsRowIDAlias() bool {
	var hasInteger, hasPrimary bool
	for _, attr := range c.Attrs {
		if strings.EqualFold(attr, "INTEGER") {
			hasInteger = true
		}
		if strings.EqualFold(attr, "PRIMARY") {
			hasPrimary = true
		}
	}
	return hasInteger && hasPrimary
}

var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(CREATE|TABLE|IF|NOT|EXISTS)\b`},
	{Name: "QuotedIdent", Pattern: `"[^"]*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `'[^']*'`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var schemaParser = participle.MustBuild[CreateTableStatement](
	participle.Lexer(schemaLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// ParseCreateTable parses one CREATE TABLE definition.
func ParseCreateTable(sql string) (*CreateTableStatement, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(sql), "; \t\r\n")
	stmt, err := schemaParser.ParseString("", trimmed)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid CREATE TABLE statement %q", sql)
	}
	stmt.Name = unquote(stmt.Name)
	for i := range stmt.Columns {
		stmt.Columns[i].Name = unquote(stmt.Columns[i].Name)
	}
	return stmt, nil
}

func unquote(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return ident[1 : len(ident)-1]
	}
	return ident
}

// ColumnMap builds the name-to-position mapping used for projection. Every
// column maps to its declaration index, which is also its record value
// position: rowid-alias columns still occupy a record slot (stored as NULL),
// so they count, but they resolve through the returned alias name instead
// of the map.
func (s *CreateTableStatement) ColumnMap() (map[string]int, string) {
	columnMap := make(map[string]int, len(s.Columns))
	rowidAlias := ""
	for position, col := range s.Columns {
		if col.IsRowIDAlias() {
			rowidAlias = col.Name
			continue
		}
		columnMap[col.Name] = position
	}
	return columnMap, rowidAlias
}
