package sqlite

import (
	"bytes"

	"github.com/juju/errors"

	"github.com/litescan/litescan/util"
)

// DBHeaderSize is the length of the file preamble on page 1.
const DBHeaderSize = 100

// headerMagic is the string every database file starts with.
var headerMagic = []byte("SQLite format 3\x00")

// Text encodings declared at offset 56. Only UTF-8 is supported here.
const (
	TextEncodingUTF8    = 1
	TextEncodingUTF16LE = 2
	TextEncodingUTF16BE = 3
)

// DBHeader is the decoded 100-byte file header.
type DBHeader struct {
	PageSizeRaw            uint16 // 1 means 65536
	WriteVersion           byte
	ReadVersion            byte
	ReservedSpace          byte
	MaxPayloadFraction     byte
	MinPayloadFraction     byte
	LeafPayloadFraction    byte
	FileChangeCounter      uint32
	DatabaseSizePages      uint32
	FirstFreelistTrunkPage uint32
	TotalFreelistPages     uint32
	SchemaCookie           uint32
	SchemaFormat           uint32
	DefaultPageCacheSize   uint32
	LargestRootBTreePage   uint32
	TextEncoding           uint32
	UserVersion            uint32
	IncrementalVacuum      uint32
	ApplicationID          uint32
	VersionValidFor        uint32
	SQLiteVersionNumber    uint32
}

// ParseDBHeader decodes and validates the file preamble.
func ParseDBHeader(buf []byte) (*DBHeader, error) {
	if len(buf) < DBHeaderSize {
		return nil, errors.Annotatef(ErrInvalidHeader, "only %d of %d header bytes", len(buf), DBHeaderSize)
	}
	if !bytes.Equal(buf[0:16], headerMagic) {
		return nil, errors.Annotate(ErrInvalidHeader, "bad magic string")
	}

	h := new(DBHeader)
	cursor := 16
	cursor, h.PageSizeRaw = util.ReadUB2(buf, cursor)
	cursor, h.WriteVersion = util.ReadByte(buf, cursor)
	cursor, h.ReadVersion = util.ReadByte(buf, cursor)
	cursor, h.ReservedSpace = util.ReadByte(buf, cursor)
	cursor, h.MaxPayloadFraction = util.ReadByte(buf, cursor)
	cursor, h.MinPayloadFraction = util.ReadByte(buf, cursor)
	cursor, h.LeafPayloadFraction = util.ReadByte(buf, cursor)
	cursor, h.FileChangeCounter = util.ReadUB4(buf, cursor)
	cursor, h.DatabaseSizePages = util.ReadUB4(buf, cursor)
	cursor, h.FirstFreelistTrunkPage = util.ReadUB4(buf, cursor)
	cursor, h.TotalFreelistPages = util.ReadUB4(buf, cursor)
	cursor, h.SchemaCookie = util.ReadUB4(buf, cursor)
	cursor, h.SchemaFormat = util.ReadUB4(buf, cursor)
	cursor, h.DefaultPageCacheSize = util.ReadUB4(buf, cursor)
	cursor, h.LargestRootBTreePage = util.ReadUB4(buf, cursor)
	cursor, h.TextEncoding = util.ReadUB4(buf, cursor)
	cursor, h.UserVersion = util.ReadUB4(buf, cursor)
	cursor, h.IncrementalVacuum = util.ReadUB4(buf, cursor)
	_, h.ApplicationID = util.ReadUB4(buf, cursor)
	_, h.VersionValidFor = util.ReadUB4(buf, 92)
	_, h.SQLiteVersionNumber = util.ReadUB4(buf, 96)

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DBHeader) validate() error {
	raw := h.PageSizeRaw
	if raw != 1 {
		if raw < 512 || raw&(raw-1) != 0 {
			return errors.Annotatef(ErrInvalidHeader, "page size %d", raw)
		}
	}
	if h.MaxPayloadFraction != 64 || h.MinPayloadFraction != 32 || h.LeafPayloadFraction != 32 {
		return errors.Annotatef(ErrInvalidHeader, "payload fractions %d/%d/%d",
			h.MaxPayloadFraction, h.MinPayloadFraction, h.LeafPayloadFraction)
	}
	// A freshly created empty file may carry 0 here.
	if h.TextEncoding > TextEncodingUTF8 {
		return errors.Annotatef(ErrInvalidHeader, "unsupported text encoding %d", h.TextEncoding)
	}
	return nil
}

// PageSize resolves the raw page-size field, mapping the sentinel 1 to 65536.
func (h *DBHeader) PageSize() uint32 {
	if h.PageSizeRaw == 1 {
		return 65536
	}
	return uint32(h.PageSizeRaw)
}
