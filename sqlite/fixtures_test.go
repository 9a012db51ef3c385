package sqlite

// Fixture builders producing real-format bytes: a 100-byte file header,
// table leaf/interior pages with cells packed at the end of the content
// area, row records, and whole multi-page files.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"

	"github.com/litescan/litescan/util"
)

func buildDBHeader(pageSize uint32, numPages uint32) []byte {
	buf := make([]byte, DBHeaderSize)
	copy(buf, headerMagic)
	raw := uint16(pageSize)
	if pageSize == 65536 {
		raw = 1
	}
	util.WriteUB2(buf, 16, raw)
	buf[18], buf[19] = 1, 1
	buf[21], buf[22], buf[23] = 64, 32, 32
	util.WriteUB4(buf, 28, numPages)
	util.WriteUB4(buf, 44, 4)
	util.WriteUB4(buf, 56, TextEncodingUTF8)
	return buf
}

// fixtureValue is one column for buildRecord: the serial type plus body.
type fixtureValue struct {
	serial uint64
	body   []byte
}

func fxNull() fixtureValue { return fixtureValue{serial: 0} }

func fxZero() fixtureValue { return fixtureValue{serial: 8} }

func fxOne() fixtureValue { return fixtureValue{serial: 9} }

func fxInt8(v int8) fixtureValue {
	return fixtureValue{serial: 1, body: []byte{byte(v)}}
}

func fxInt32(v int32) fixtureValue {
	return fixtureValue{serial: 4, body: util.AppendUB4(nil, uint32(v))}
}

func fxText(s string) fixtureValue {
	return fixtureValue{serial: 13 + 2*uint64(len(s)), body: []byte(s)}
}

func fxBlob(b []byte) fixtureValue {
	return fixtureValue{serial: 12 + 2*uint64(len(b)), body: b}
}

// buildRecord assembles a record payload: header-length varint (which
// counts itself), serial-type varints, then the value bodies.
func buildRecord(values ...fixtureValue) []byte {
	var serials []byte
	for _, v := range values {
		serials = append(serials, EncodeVarint(v.serial)...)
	}

	lenWidth := 1
	for len(EncodeVarint(uint64(len(serials)+lenWidth))) != lenWidth {
		lenWidth++
	}
	out := EncodeVarint(uint64(len(serials) + lenWidth))
	out = append(out, serials...)
	for _, v := range values {
		out = append(out, v.body...)
	}
	return out
}

type leafRow struct {
	rowID   int64
	payload []byte
}

// buildTableLeafPage lays out a 0x0d page of bufLen bytes. ptrAdjust is
// added to every stored offset: 0 for ordinary pages, 100 when the buffer
// is a page-1 body (stored offsets are file-relative there).
func buildTableLeafPage(bufLen, ptrAdjust int, rows []leafRow) []byte {
	buf := make([]byte, bufLen)
	content := bufLen
	offsets := make([]int, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		cell := EncodeVarint(uint64(len(rows[i].payload)))
		cell = append(cell, EncodeVarint(uint64(rows[i].rowID))...)
		cell = append(cell, rows[i].payload...)
		content -= len(cell)
		copy(buf[content:], cell)
		offsets[i] = content
	}

	buf[0] = byte(PageTypeTableLeaf)
	util.WriteUB2(buf, 3, uint16(len(rows)))
	util.WriteUB2(buf, 5, uint16(content+ptrAdjust))
	cursor := 8
	for i := range rows {
		cursor = util.WriteUB2(buf, cursor, uint16(offsets[i]+ptrAdjust))
	}
	return buf
}

type interiorEntry struct {
	leftChild uint32
	rowID     int64
}

// buildTableInteriorPage lays out a 0x05 page: 12-byte header with the
// right-most pointer, then the cell-pointer array at offset 12.
func buildTableInteriorPage(bufLen, ptrAdjust int, entries []interiorEntry, rightMost uint32) []byte {
	buf := make([]byte, bufLen)
	content := bufLen
	offsets := make([]int, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		cell := util.AppendUB4(nil, entries[i].leftChild)
		cell = append(cell, EncodeVarint(uint64(entries[i].rowID))...)
		content -= len(cell)
		copy(buf[content:], cell)
		offsets[i] = content
	}

	buf[0] = byte(PageTypeTableInterior)
	util.WriteUB2(buf, 3, uint16(len(entries)))
	util.WriteUB2(buf, 5, uint16(content+ptrAdjust))
	util.WriteUB4(buf, 8, rightMost)
	cursor := 12
	for i := range entries {
		cursor = util.WriteUB2(buf, cursor, uint16(offsets[i]+ptrAdjust))
	}
	return buf
}

// buildDBFile assembles a whole database file. page1Body must be
// pageSize-100 bytes; the remaining pages are full pageSize buffers.
func buildDBFile(t *testing.T, pageSize int, page1Body []byte, rest ...[]byte) []byte {
	t.Helper()
	require.Len(t, page1Body, pageSize-DBHeaderSize)

	numPages := 1 + len(rest)
	file := make([]byte, pageSize*numPages)
	copy(file, buildDBHeader(uint32(pageSize), uint32(numPages)))
	copy(file[DBHeaderSize:], page1Body)
	for i, page := range rest {
		require.Len(t, page, pageSize)
		copy(file[pageSize*(i+1):], page)
	}
	return file
}

func writeTempDB(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// schemaRowPayload builds one schema-table record.
func schemaRowPayload(objType, name, tblName string, rootPage int8, sql string) []byte {
	return buildRecord(fxText(objType), fxText(name), fxText(tblName), fxInt8(rootPage), fxText(sql))
}

// memLoader serves pages from memory, for tests that need no file.
type memLoader map[uint32]*Page

func (m memLoader) LoadPage(pageNo uint32) (*Page, error) {
	page, ok := m[pageNo]
	if !ok {
		return nil, errors.Annotatef(ErrInvalidPageNo, "page %d not in fixture", pageNo)
	}
	return page, nil
}
