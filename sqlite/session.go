package sqlite

import (
	"os"
	"strings"

	"github.com/juju/errors"

	"github.com/litescan/litescan/conf"
	"github.com/litescan/litescan/logger"
	"github.com/litescan/litescan/sqlite/sqlparser"
)

// Session owns one open database file and its decoded header. It is the
// single point of file access: every page read goes through LoadPage. A
// session is single-threaded; it must not be shared across goroutines.
type Session struct {
	path   string
	file   *os.File
	header *DBHeader
	cfg    *conf.Cfg
}

// Open opens a database file read-only and bootstraps the 100-byte header.
func Open(path string, cfg *conf.Cfg) (*Session, error) {
	if cfg == nil {
		cfg = conf.NewCfg()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	buf := make([]byte, DBHeaderSize)
	if _, err := file.ReadAt(buf, 0); err != nil {
		file.Close()
		return nil, errors.Annotatef(err, "read database header of %s", path)
	}
	header, err := ParseDBHeader(buf)
	if err != nil {
		file.Close()
		return nil, errors.Annotatef(err, "%s", path)
	}

	logger.Debugf("opened %s: page size %d, %d pages", path, header.PageSize(), header.DatabaseSizePages)
	return &Session{path: path, file: file, header: header, cfg: cfg}, nil
}

// Close releases the file handle. The session is unusable afterwards.
func (s *Session) Close() error {
	return s.file.Close()
}

// Header returns the decoded file header.
func (s *Session) Header() *DBHeader {
	return s.header
}

// LoadPage implements PageLoader against the session's file.
func (s *Session) LoadPage(pageNo uint32) (*Page, error) {
	return LoadPage(s.file, pageNo, s.header.PageSize())
}

// BTree loads and fully decodes one page.
func (s *Session) BTree(pageNo uint32) (*BTree, error) {
	page, err := s.LoadPage(pageNo)
	if err != nil {
		return nil, err
	}
	return NewBTree(page, s.cfg.MaxPageNumber)
}

func (s *Session) walker() *TreeWalker {
	return &TreeWalker{Loader: s, MaxPageNo: s.cfg.MaxPageNumber, MaxDepth: s.cfg.MaxBTreeDepth}
}

// DBInfo is the summary surfaced by the info command.
type DBInfo struct {
	PageSize  uint32
	NumTables int
}

// Info reports the page size and the number of tables in the schema.
func (s *Session) Info() (*DBInfo, error) {
	entries, err := s.SchemaEntries()
	if err != nil {
		return nil, err
	}
	numTables := 0
	for _, entry := range entries {
		if entry.Type == "table" {
			numTables++
		}
	}
	return &DBInfo{PageSize: s.header.PageSize(), NumTables: numTables}, nil
}

// CountRows counts the rows of a table by walking its b-tree.
func (s *Session) CountRows(table string) (int64, error) {
	entry, err := s.lookupTable(table)
	if err != nil {
		return 0, err
	}
	return s.walker().CountRows(entry.RootPage)
}

// ResultSet is the ordered output of a query: column labels and one value
// slice per row, in rowid order.
type ResultSet struct {
	Columns []string
	Rows    [][]Value
}

// rowidColumn is the pseudo-column name that always resolves to the rowid.
const rowidColumn = "rowid"

// columnSource resolves one requested output column to either the cell
// rowid or a record position.
type columnSource struct {
	name     string
	useRowID bool
	position int // record value index, equal to the column's declaration index
}

// ExecuteSelect runs a parsed SELECT against the file and materializes the
// result rows.
func (s *Session) ExecuteSelect(stmt *sqlparser.SelectStatement) (*ResultSet, error) {
	if stmt.Where != nil {
		return nil, errors.Annotate(ErrUnsupportedQuery, "WHERE clauses are not supported")
	}

	var hasStar, hasCount bool
	var named []string
	for _, col := range stmt.Columns {
		switch {
		case col.Star:
			hasStar = true
		case col.Count:
			hasCount = true
		default:
			named = append(named, col.Name)
		}
	}
	if hasCount && len(stmt.Columns) > 1 {
		return nil, errors.Annotate(ErrUnsupportedQuery, "COUNT(*) cannot be combined with other columns")
	}
	if hasStar && len(stmt.Columns) > 1 {
		return nil, errors.Annotate(ErrUnsupportedQuery, "* cannot be combined with other columns")
	}

	entry, err := s.lookupTable(stmt.From)
	if err != nil {
		return nil, err
	}

	if hasCount {
		total, err := s.walker().CountRows(entry.RootPage)
		if err != nil {
			return nil, err
		}
		return &ResultSet{
			Columns: []string{"COUNT(*)"},
			Rows:    [][]Value{{IntegerValue{Int: total}}},
		}, nil
	}

	definition, err := sqlparser.ParseCreateTable(entry.SQL)
	if err != nil {
		return nil, errors.Annotatef(err, "schema of table %s", entry.TableName)
	}
	columnMap, rowidAlias := definition.ColumnMap()

	if hasStar {
		named = named[:0]
		for _, col := range definition.Columns {
			named = append(named, col.Name)
		}
	}

	sources := make([]columnSource, 0, len(named))
	for _, name := range named {
		source, err := resolveColumn(name, columnMap, rowidAlias)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	result := &ResultSet{Columns: named}
	err = s.walker().WalkRows(entry.RootPage, func(row *Row) error {
		out := make([]Value, len(sources))
		for i, source := range sources {
			out[i] = source.extract(row)
		}
		result.Rows = append(result.Rows, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("select on %s returned %d rows", entry.TableName, len(result.Rows))
	return result, nil
}

func resolveColumn(name string, columnMap map[string]int, rowidAlias string) (columnSource, error) {
	if strings.EqualFold(name, rowidColumn) || (rowidAlias != "" && strings.EqualFold(name, rowidAlias)) {
		return columnSource{name: name, useRowID: true}, nil
	}
	if position, ok := columnMap[name]; ok {
		return columnSource{name: name, position: position}, nil
	}
	for candidate, position := range columnMap {
		if strings.EqualFold(candidate, name) {
			return columnSource{name: name, position: position}, nil
		}
	}
	return columnSource{}, errors.Annotatef(ErrColumnNotFound, "%s", name)
}

// extract pulls the output value for one row. Positions past the stored
// record yield NULL, so rows written under an older, narrower schema still
// project.
func (c columnSource) extract(row *Row) Value {
	if c.useRowID {
		return IntegerValue{Int: row.RowID}
	}
	if c.position < len(row.Record.Values) {
		return row.Record.Values[c.position]
	}
	return NullValue{}
}
