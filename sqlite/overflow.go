package sqlite

import (
	"github.com/juju/errors"

	"github.com/litescan/litescan/logger"
	"github.com/litescan/litescan/util"
)

// PageLoader loads one page by its 1-based number. *Session implements it;
// tests substitute in-memory loaders.
type PageLoader interface {
	LoadPage(pageNo uint32) (*Page, error)
}

// overflowPointerSize is the big-endian next-page pointer at the start of
// every overflow page. The remainder of the page is payload content.
const overflowPointerSize = 4

// FullPayload returns the complete payload of a cell as one contiguous byte
// slice, following the overflow chain when the cell spilled. Interior table
// cells carry no payload and yield nil.
func FullPayload(loader PageLoader, cell Cell, maxPageNo uint32) ([]byte, error) {
	switch c := cell.(type) {
	case *TableLeafCell:
		return assemblePayload(loader, c.Payload, c.PayloadSize, c.OverflowPage, maxPageNo)
	case *IndexLeafCell:
		return assemblePayload(loader, c.Payload, c.PayloadSize, c.OverflowPage, maxPageNo)
	case *IndexInteriorCell:
		return assemblePayload(loader, c.Payload, c.PayloadSize, c.OverflowPage, maxPageNo)
	case *TableInteriorCell:
		return nil, nil
	}
	return nil, errors.Annotatef(ErrUnknownPageType, "cell %T", cell)
}

// assemblePayload stitches the local prefix and the overflow chain together
// until the declared total is reached. Termination is driven by the declared
// size, never by the chain itself, so the hop count is capped to keep a
// malformed chain from looping.
func assemblePayload(loader PageLoader, local []byte, declared uint64, firstOverflow uint32, maxPageNo uint32) ([]byte, error) {
	if uint64(len(local)) >= declared {
		return local[:declared], nil
	}
	if firstOverflow == 0 {
		// Suspicious pointer already dropped during cell decode; hand back
		// what is locally available.
		return local, nil
	}

	full := make([]byte, 0, declared)
	full = append(full, local...)

	next := firstOverflow
	hops := 0
	for next != 0 && uint64(len(full)) < declared {
		hops++
		if hops > maxOverflowHops(declared) {
			return nil, errors.Annotatef(ErrOverflowChain, "no end after %d overflow pages", hops-1)
		}

		page, err := loader.LoadPage(next)
		if err != nil {
			return nil, errors.Annotatef(err, "overflow page %d", next)
		}
		if len(page.Data) <= overflowPointerSize {
			return nil, errors.Annotatef(ErrOverflowChain, "overflow page %d smaller than its pointer", next)
		}

		_, pointer := util.ReadUB4(page.Data, 0)
		content := page.Data[overflowPointerSize:]
		needed := declared - uint64(len(full))
		if needed < uint64(len(content)) {
			content = content[:needed]
		}
		full = append(full, content...)

		if pointer > maxPageNo {
			logger.Warnf("overflow page %d: suspicious next pointer %d, ending chain", next, pointer)
			pointer = 0
		}
		next = pointer
	}

	if uint64(len(full)) < declared {
		return nil, errors.Annotatef(ErrOverflowChain, "assembled %d of %d bytes", len(full), declared)
	}
	return full, nil
}

// maxOverflowHops bounds the chain length for a payload: even one content
// byte per page cannot need more pages than the payload has bytes, and a
// sane chain is far shorter.
func maxOverflowHops(declared uint64) int {
	const hardCap = 1 << 20
	if declared > hardCap {
		return hardCap
	}
	return int(declared) + 1
}
