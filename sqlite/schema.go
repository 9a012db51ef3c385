package sqlite

import (
	"strings"

	"github.com/juju/errors"
)

// schemaRootPage is where the schema table's b-tree always starts.
const schemaRootPage = 1

// SchemaEntry is one row of the schema table: an object's kind, names,
// root page and the SQL text that created it.
type SchemaEntry struct {
	Type      string
	Name      string
	TableName string
	RootPage  uint32
	SQL       string
}

// SchemaEntries scans the whole schema b-tree, reassembling any entries
// whose CREATE statements spilled to overflow pages.
func (s *Session) SchemaEntries() ([]SchemaEntry, error) {
	var entries []SchemaEntry
	err := s.walker().WalkRows(schemaRootPage, func(row *Row) error {
		entry, err := schemaEntryFromRecord(row.Record)
		if err != nil {
			return errors.Annotatef(err, "schema row %d", row.RowID)
		}
		entries = append(entries, *entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Schema rows store: type, name, tbl_name, rootpage, sql.
func schemaEntryFromRecord(record *Record) (*SchemaEntry, error) {
	if len(record.Values) < 5 {
		return nil, errors.Annotatef(ErrRecordTruncated, "schema record has %d columns", len(record.Values))
	}
	entry := new(SchemaEntry)
	var err error
	if entry.Type, err = textValueAt(record, 0); err != nil {
		return nil, err
	}
	if entry.Name, err = textValueAt(record, 1); err != nil {
		return nil, err
	}
	if entry.TableName, err = textValueAt(record, 2); err != nil {
		return nil, err
	}
	rootPage, err := integerValueAt(record, 3)
	if err != nil {
		return nil, err
	}
	if rootPage < 0 {
		return nil, errors.Annotatef(ErrInvalidPageNo, "root page %d", rootPage)
	}
	entry.RootPage = uint32(rootPage)
	// Views and triggers may carry a NULL sql column; tolerate it.
	if record.Values[4].DataType() == ValueTypeText {
		entry.SQL, _ = textValueAt(record, 4)
	}
	return entry, nil
}

func textValueAt(record *Record, position int) (string, error) {
	text, ok := record.Values[position].(TextValue)
	if !ok {
		return "", errors.Annotatef(ErrRecordTruncated, "column %d is %T, want text", position, record.Values[position])
	}
	return text.Text, nil
}

func integerValueAt(record *Record, position int) (int64, error) {
	integer, ok := record.Values[position].(IntegerValue)
	if !ok {
		return 0, errors.Annotatef(ErrRecordTruncated, "column %d is %T, want integer", position, record.Values[position])
	}
	return integer.Int, nil
}

// lookupTable finds the schema entry for a table by its tbl_name,
// case-insensitively.
func (s *Session) lookupTable(name string) (*SchemaEntry, error) {
	entries, err := s.SchemaEntries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Type == "table" && strings.EqualFold(entries[i].TableName, name) {
			return &entries[i], nil
		}
	}
	return nil, errors.Annotatef(ErrTableNotFound, "%s", name)
}

// Tables lists user table names in schema order. The internal
// sqlite_sequence bookkeeping table is omitted.
func (s *Session) Tables() ([]string, error) {
	entries, err := s.SchemaEntries()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.Type == "table" && entry.TableName != "sqlite_sequence" {
			names = append(names, entry.TableName)
		}
	}
	return names, nil
}
