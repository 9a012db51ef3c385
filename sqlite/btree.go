package sqlite

import (
	"github.com/juju/errors"

	"github.com/litescan/litescan/logger"
)

// BTree is the decoded read-only view of a single page: its header and
// cells. It is rebuilt for every page visited; nothing is cached.
type BTree struct {
	Page   *Page
	Header *PageHeader
	Cells  []Cell
}

// NewBTree decodes the header and all cells of a page.
func NewBTree(p *Page, maxPageNo uint32) (*BTree, error) {
	header, err := ParsePageHeader(p)
	if err != nil {
		return nil, err
	}
	cells, err := DecodeCells(p, header, maxPageNo)
	if err != nil {
		return nil, err
	}
	return &BTree{Page: p, Header: header, Cells: cells}, nil
}

// Row is one table row surfaced by a traversal: the cell's rowid and the
// decoded record.
type Row struct {
	RowID  int64
	Record *Record
}

// TreeWalker runs depth-first traversals over a table b-tree, loading each
// page on demand. Traversals are pure recursion with no shared state; the
// depth cap only guards against adversarial files.
type TreeWalker struct {
	Loader    PageLoader
	MaxPageNo uint32
	MaxDepth  int
}

func (w *TreeWalker) maxDepth() int {
	if w.MaxDepth > 0 {
		return w.MaxDepth
	}
	return 64
}

func (w *TreeWalker) loadTree(pageNo uint32) (*BTree, error) {
	page, err := w.Loader.LoadPage(pageNo)
	if err != nil {
		return nil, err
	}
	return NewBTree(page, w.MaxPageNo)
}

// CountRows counts the table rows stored under root without decoding any
// record payloads.
func (w *TreeWalker) CountRows(root uint32) (int64, error) {
	return w.countRows(root, 0)
}

func (w *TreeWalker) countRows(pageNo uint32, depth int) (int64, error) {
	if depth > w.maxDepth() {
		return 0, errors.Annotatef(ErrTreeTooDeep, "at page %d", pageNo)
	}
	tree, err := w.loadTree(pageNo)
	if err != nil {
		return 0, err
	}

	switch tree.Header.Type {
	case PageTypeTableLeaf:
		return int64(len(tree.Cells)), nil

	case PageTypeTableInterior:
		var total int64
		for _, cell := range tree.Cells {
			interior, ok := cell.(*TableInteriorCell)
			if !ok {
				return 0, errors.Annotatef(ErrUnknownPageType, "page %d: %T on interior page", pageNo, cell)
			}
			n, err := w.countRows(interior.LeftChild, depth+1)
			if err != nil {
				return 0, err
			}
			total += n
		}
		// The right-most subtree has no cell of its own; it hangs off the
		// page header and holds the rows above every cell key.
		n, err := w.countRows(tree.Header.RightMostPointer, depth+1)
		if err != nil {
			return 0, err
		}
		return total + n, nil
	}
	return 0, errors.Annotatef(ErrUnknownPageType, "page %d is a %s page, not a table b-tree", pageNo, tree.Header.Type)
}

// WalkRows visits every leaf row under root in rowid order, reassembling
// overflowed payloads and decoding each record before handing it to fn.
func (w *TreeWalker) WalkRows(root uint32, fn func(*Row) error) error {
	return w.walkRows(root, 0, fn)
}

func (w *TreeWalker) walkRows(pageNo uint32, depth int, fn func(*Row) error) error {
	if depth > w.maxDepth() {
		return errors.Annotatef(ErrTreeTooDeep, "at page %d", pageNo)
	}
	tree, err := w.loadTree(pageNo)
	if err != nil {
		return err
	}

	switch tree.Header.Type {
	case PageTypeTableLeaf:
		logger.Debugf("page %d: %d leaf rows", pageNo, len(tree.Cells))
		for _, cell := range tree.Cells {
			leaf, ok := cell.(*TableLeafCell)
			if !ok {
				return errors.Annotatef(ErrUnknownPageType, "page %d: %T on leaf page", pageNo, cell)
			}
			payload, err := FullPayload(w.Loader, leaf, w.MaxPageNo)
			if err != nil {
				return errors.Annotatef(err, "row %d", leaf.RowID)
			}
			record, err := ParseRecord(payload)
			if err != nil {
				return errors.Annotatef(err, "row %d", leaf.RowID)
			}
			if err := fn(&Row{RowID: leaf.RowID, Record: record}); err != nil {
				return err
			}
		}
		return nil

	case PageTypeTableInterior:
		for _, cell := range tree.Cells {
			interior, ok := cell.(*TableInteriorCell)
			if !ok {
				return errors.Annotatef(ErrUnknownPageType, "page %d: %T on interior page", pageNo, cell)
			}
			if err := w.walkRows(interior.LeftChild, depth+1, fn); err != nil {
				return err
			}
		}
		return w.walkRows(tree.Header.RightMostPointer, depth+1, fn)
	}
	return errors.Annotatef(ErrUnknownPageType, "page %d is a %s page, not a table b-tree", pageNo, tree.Header.Type)
}
