package sqlite

import (
	"io"

	"github.com/juju/errors"

	"github.com/litescan/litescan/logger"
	"github.com/litescan/litescan/util"
)

// B-tree page types, the one-byte flag at page offset 0.
type PageType byte

const (
	PageTypeIndexInterior PageType = 0x02
	PageTypeTableInterior PageType = 0x05
	PageTypeIndexLeaf     PageType = 0x0a
	PageTypeTableLeaf     PageType = 0x0d
)

// IsInterior reports whether pages of this type carry the 12-byte header
// with a right-most child pointer.
func (t PageType) IsInterior() bool {
	return t == PageTypeIndexInterior || t == PageTypeTableInterior
}

func (t PageType) String() string {
	switch t {
	case PageTypeIndexInterior:
		return "index interior"
	case PageTypeTableInterior:
		return "table interior"
	case PageTypeIndexLeaf:
		return "index leaf"
	case PageTypeTableLeaf:
		return "table leaf"
	}
	return "unknown"
}

// Page is one immutable page-size block of the database file. For page 1
// the buffer starts at file offset 100, past the file header, so stored
// cell pointers on page 1 are shifted back by 100 when indexing Data.
type Page struct {
	Number uint32
	Offset int64
	Data   []byte
}

// LoadPage seeks to the page's byte offset and reads exactly one page.
// Page numbers are 1-based; page 1 is read from offset 100.
func LoadPage(r io.ReaderAt, pageNo uint32, pageSize uint32) (*Page, error) {
	if pageNo == 0 {
		return nil, errors.Trace(ErrInvalidPageNo)
	}
	var offset int64
	if pageNo == 1 {
		offset = DBHeaderSize
	} else {
		offset = int64(pageNo-1) * int64(pageSize)
	}

	data := make([]byte, pageSize)
	if _, err := r.ReadAt(data, offset); err != nil {
		return nil, errors.Annotatef(err, "read page %d at offset %d", pageNo, offset)
	}
	logger.Debugf("loaded page %d (%d bytes at offset %d)", pageNo, pageSize, offset)
	return &Page{Number: pageNo, Offset: offset, Data: data}, nil
}

// pointerAdjustment is the correction applied to stored in-page offsets,
// which are file-relative-minus-100 on page 1 and page-relative elsewhere.
func (p *Page) pointerAdjustment() int {
	if p.Number == 1 {
		return DBHeaderSize
	}
	return 0
}

func (p *Page) boundsCheck(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(p.Data) {
		return errors.Annotatef(ErrPageBounds, "page %d offset %d length %d", p.Number, offset, length)
	}
	return nil
}

func (p *Page) ReadU8(offset int) (byte, error) {
	if err := p.boundsCheck(offset, 1); err != nil {
		return 0, err
	}
	_, v := util.ReadByte(p.Data, offset)
	return v, nil
}

func (p *Page) ReadU16(offset int) (uint16, error) {
	if err := p.boundsCheck(offset, 2); err != nil {
		return 0, err
	}
	_, v := util.ReadUB2(p.Data, offset)
	return v, nil
}

func (p *Page) ReadU32(offset int) (uint32, error) {
	if err := p.boundsCheck(offset, 4); err != nil {
		return 0, err
	}
	_, v := util.ReadUB4(p.Data, offset)
	return v, nil
}

// ReadBytes returns a copy of length bytes at offset.
func (p *Page) ReadBytes(offset, length int) ([]byte, error) {
	if err := p.boundsCheck(offset, length); err != nil {
		return nil, err
	}
	_, v := util.ReadBytes(p.Data, offset, length)
	return v, nil
}

// ReadVarint decodes a varint at offset, returning the value and its width.
func (p *Page) ReadVarint(offset int) (uint64, int, error) {
	if offset < 0 || offset >= len(p.Data) {
		return 0, 0, errors.Annotatef(ErrPageBounds, "page %d offset %d", p.Number, offset)
	}
	v, n, err := DecodeVarint(p.Data[offset:])
	if err != nil {
		return 0, 0, errors.Annotatef(err, "page %d offset %d", p.Number, offset)
	}
	return v, n, nil
}

// PageHeader is the decoded 8- or 12-byte b-tree page header.
type PageHeader struct {
	Type                PageType
	FirstFreeBlock      uint16
	NumCells            uint16
	CellContentStart    uint32 // stored 0 decodes as 65536
	FragmentedFreeBytes byte
	RightMostPointer    uint32 // interior pages only
}

// Size is the header length in bytes: 12 for interior pages, 8 otherwise.
func (h *PageHeader) Size() int {
	if h.Type.IsInterior() {
		return 12
	}
	return 8
}

// ParsePageHeader decodes the page header at the start of the page buffer.
func ParsePageHeader(p *Page) (*PageHeader, error) {
	typeByte, err := p.ReadU8(0)
	if err != nil {
		return nil, err
	}
	pageType := PageType(typeByte)
	switch pageType {
	case PageTypeIndexInterior, PageTypeTableInterior, PageTypeIndexLeaf, PageTypeTableLeaf:
	default:
		return nil, errors.Annotatef(ErrUnknownPageType, "page %d type 0x%02x", p.Number, typeByte)
	}

	h := &PageHeader{Type: pageType}
	if h.FirstFreeBlock, err = p.ReadU16(1); err != nil {
		return nil, err
	}
	if h.NumCells, err = p.ReadU16(3); err != nil {
		return nil, err
	}
	contentStart, err := p.ReadU16(5)
	if err != nil {
		return nil, err
	}
	h.CellContentStart = uint32(contentStart)
	if contentStart == 0 {
		h.CellContentStart = 65536
	}
	if h.FragmentedFreeBytes, err = p.ReadU8(7); err != nil {
		return nil, err
	}
	if pageType.IsInterior() {
		if h.RightMostPointer, err = p.ReadU32(8); err != nil {
			return nil, err
		}
	}
	return h, nil
}
