package sqlite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLevelTree builds a 12-row table b-tree: an interior root on page 2
// with two cells plus the right-most pointer, four rows per leaf. Each row
// holds a single integer column, rowid*10.
func twoLevelTree(t *testing.T) memLoader {
	t.Helper()
	const pageSize = 512

	leaf := func(rowIDs ...int64) *Page {
		rows := make([]leafRow, len(rowIDs))
		for i, id := range rowIDs {
			rows[i] = leafRow{rowID: id, payload: buildRecord(fxInt32(int32(id * 10)))}
		}
		return &Page{Number: 0, Data: buildTableLeafPage(pageSize, 0, rows)}
	}

	root := buildTableInteriorPage(pageSize, 0, []interiorEntry{
		{leftChild: 3, rowID: 4},
		{leftChild: 4, rowID: 8},
	}, 5)

	return memLoader{
		2: {Number: 2, Data: root},
		3: leaf(1, 2, 3, 4),
		4: leaf(5, 6, 7, 8),
		5: leaf(9, 10, 11, 12),
	}
}

func TestNewBTree(t *testing.T) {
	loader := twoLevelTree(t)
	tree, err := NewBTree(loader[3], 1000)
	require.NoError(t, err)
	assert.Equal(t, PageTypeTableLeaf, tree.Header.Type)
	assert.Len(t, tree.Cells, 4)
}

func TestCountRowsLeafOnly(t *testing.T) {
	loader := twoLevelTree(t)
	w := &TreeWalker{Loader: loader, MaxPageNo: 1000}

	n, err := w.CountRows(4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestCountRowsTwoLevels(t *testing.T) {
	// The right-most subtree hangs off the page header, not a cell; its
	// four rows must still be counted.
	w := &TreeWalker{Loader: twoLevelTree(t), MaxPageNo: 1000}

	n, err := w.CountRows(2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestWalkRowsOrder(t *testing.T) {
	w := &TreeWalker{Loader: twoLevelTree(t), MaxPageNo: 1000}

	var rowIDs []int64
	err := w.WalkRows(2, func(row *Row) error {
		rowIDs = append(rowIDs, row.RowID)
		require.Len(t, row.Record.Values, 1)
		assert.Equal(t, IntegerValue{Int: row.RowID * 10}, row.Record.Values[0])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, rowIDs)
}

func TestWalkRowsCallbackError(t *testing.T) {
	w := &TreeWalker{Loader: twoLevelTree(t), MaxPageNo: 1000}

	stop := errors.New("stop")
	seen := 0
	err := w.WalkRows(2, func(*Row) error {
		seen++
		if seen == 3 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 3, seen)
}

func TestTraversalDepthGuard(t *testing.T) {
	// An interior page whose right-most pointer loops back to itself must
	// hit the depth cap instead of recursing forever.
	cyclic := buildTableInteriorPage(512, 0, nil, 2)
	loader := memLoader{2: {Number: 2, Data: cyclic}}
	w := &TreeWalker{Loader: loader, MaxPageNo: 1000, MaxDepth: 8}

	_, err := w.CountRows(2)
	assert.True(t, errors.Is(err, ErrTreeTooDeep))

	err = w.WalkRows(2, func(*Row) error { return nil })
	assert.True(t, errors.Is(err, ErrTreeTooDeep))
}

func TestTraversalRejectsIndexPages(t *testing.T) {
	buf := make([]byte, 512)
	buf[0] = byte(PageTypeIndexLeaf)
	loader := memLoader{2: {Number: 2, Data: buf}}
	w := &TreeWalker{Loader: loader, MaxPageNo: 1000}

	_, err := w.CountRows(2)
	assert.True(t, errors.Is(err, ErrUnknownPageType))

	err = w.WalkRows(2, func(*Row) error { return nil })
	assert.True(t, errors.Is(err, ErrUnknownPageType))
}
