package sqlite

import (
	"github.com/juju/errors"

	"github.com/litescan/litescan/logger"
)

// Cell is one decoded entry of a page's cell content area. The four shapes
// are fixed by the file format; the set never grows.
type Cell interface {
	// PageType reports which page type this cell shape belongs to.
	PageType() PageType
}

// TableLeafCell holds one table row: its rowid and the row record payload.
type TableLeafCell struct {
	PayloadSize  uint64
	RowID        int64
	Payload      []byte // local prefix; full payload may continue on overflow pages
	OverflowPage uint32 // 0 when the local payload is complete
}

func (*TableLeafCell) PageType() PageType { return PageTypeTableLeaf }

// TableInteriorCell points at the subtree holding rowids <= RowID.
type TableInteriorCell struct {
	LeftChild uint32
	RowID     int64
}

func (*TableInteriorCell) PageType() PageType { return PageTypeTableInterior }

// IndexLeafCell holds one index key payload.
type IndexLeafCell struct {
	PayloadSize  uint64
	Payload      []byte
	OverflowPage uint32
}

func (*IndexLeafCell) PageType() PageType { return PageTypeIndexLeaf }

// IndexInteriorCell holds a child pointer plus the divider key payload.
type IndexInteriorCell struct {
	LeftChild    uint32
	PayloadSize  uint64
	Payload      []byte
	OverflowPage uint32
}

func (*IndexInteriorCell) PageType() PageType { return PageTypeIndexInterior }

// DecodeCells walks the cell-pointer array (2-byte big-endian offsets right
// after the page header, in key order) and decodes one cell per entry.
// maxPageNo bounds overflow page numbers; anything outside (0, maxPageNo]
// is treated as "no overflow" rather than followed.
func DecodeCells(p *Page, h *PageHeader, maxPageNo uint32) ([]Cell, error) {
	adjust := p.pointerAdjustment()
	ptrArray := h.Size()

	cells := make([]Cell, 0, h.NumCells)
	for i := 0; i < int(h.NumCells); i++ {
		stored, err := p.ReadU16(ptrArray + 2*i)
		if err != nil {
			return nil, err
		}
		offset := int(stored) - adjust
		if offset < 0 || offset >= len(p.Data) {
			return nil, errors.Annotatef(ErrPageBounds, "page %d cell %d pointer %d", p.Number, i, stored)
		}

		cell, err := decodeCell(p, h.Type, offset, maxPageNo)
		if err != nil {
			return nil, errors.Annotatef(err, "page %d cell %d", p.Number, i)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func decodeCell(p *Page, pageType PageType, offset int, maxPageNo uint32) (Cell, error) {
	switch pageType {
	case PageTypeTableLeaf:
		payloadSize, n, err := p.ReadVarint(offset)
		if err != nil {
			return nil, err
		}
		offset += n
		rowID, n, err := p.ReadVarint(offset)
		if err != nil {
			return nil, err
		}
		offset += n
		payload, overflow, err := readLocalPayload(p, offset, payloadSize, maxPageNo)
		if err != nil {
			return nil, err
		}
		return &TableLeafCell{
			PayloadSize:  payloadSize,
			RowID:        int64(rowID),
			Payload:      payload,
			OverflowPage: overflow,
		}, nil

	case PageTypeTableInterior:
		leftChild, err := p.ReadU32(offset)
		if err != nil {
			return nil, err
		}
		rowID, _, err := p.ReadVarint(offset + 4)
		if err != nil {
			return nil, err
		}
		return &TableInteriorCell{LeftChild: leftChild, RowID: int64(rowID)}, nil

	case PageTypeIndexLeaf:
		payloadSize, n, err := p.ReadVarint(offset)
		if err != nil {
			return nil, err
		}
		payload, overflow, err := readLocalPayload(p, offset+n, payloadSize, maxPageNo)
		if err != nil {
			return nil, err
		}
		return &IndexLeafCell{PayloadSize: payloadSize, Payload: payload, OverflowPage: overflow}, nil

	case PageTypeIndexInterior:
		leftChild, err := p.ReadU32(offset)
		if err != nil {
			return nil, err
		}
		payloadSize, n, err := p.ReadVarint(offset + 4)
		if err != nil {
			return nil, err
		}
		payload, overflow, err := readLocalPayload(p, offset+4+n, payloadSize, maxPageNo)
		if err != nil {
			return nil, err
		}
		return &IndexInteriorCell{
			LeftChild:    leftChild,
			PayloadSize:  payloadSize,
			Payload:      payload,
			OverflowPage: overflow,
		}, nil
	}
	return nil, errors.Annotatef(ErrUnknownPageType, "type 0x%02x", byte(pageType))
}

// readLocalPayload splits a declared payload into the locally stored prefix
// and the first overflow page number. The local capacity is everything from
// the payload start to the end of the page; if the payload fits it is read
// whole, otherwise the last four bytes of that capacity hold the overflow
// page number and the rest is the local prefix.
func readLocalPayload(p *Page, offset int, payloadSize uint64, maxPageNo uint32) ([]byte, uint32, error) {
	remaining := len(p.Data) - offset
	if remaining < 0 {
		return nil, 0, errors.Annotatef(ErrPageBounds, "page %d payload at %d", p.Number, offset)
	}
	if payloadSize <= uint64(remaining) {
		payload, err := p.ReadBytes(offset, int(payloadSize))
		return payload, 0, err
	}

	if remaining < 4 {
		return nil, 0, errors.Annotatef(ErrPageBounds,
			"page %d: %d bytes left, no room for overflow pointer", p.Number, remaining)
	}
	local := remaining - 4
	payload, err := p.ReadBytes(offset, local)
	if err != nil {
		return nil, 0, err
	}
	overflow, err := p.ReadU32(offset + local)
	if err != nil {
		return nil, 0, err
	}
	// A zero or implausibly large page number would send the assembler
	// chasing garbage; degrade to a truncated payload instead.
	if overflow == 0 || overflow > maxPageNo {
		logger.Warnf("page %d: suspicious overflow page %d, treating payload as local only", p.Number, overflow)
		return payload, 0, nil
	}
	return payload, overflow, nil
}
