package wire

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
)

// RecordFormat selects the record encoding of a segmented payload.
type RecordFormat uint8

// Record formats.
const (
	// Record5LE is a 2-byte little-endian code followed by a 3-byte
	// little-endian value.
	Record5LE RecordFormat = iota

	// Record4BE is a 2-byte big-endian measure ID followed by a 2-byte
	// big-endian value. Bit 0 of the measure ID flags a status record.
	Record4BE
)

// Width returns the record size in bytes.
func (r RecordFormat) Width() int {
	switch r {
	case Record4BE:
		return 4
	default:
		return 5
	}
}

// String returns the format name.
func (r RecordFormat) String() string {
	switch r {
	case Record5LE:
		return "record5le"
	case Record4BE:
		return "record4be"
	default:
		return fmt.Sprintf("RecordFormat(%d)", r)
	}
}

// Item is one decoded channel value.
type Item struct {
	Code  uint16
	Raw   int32
	Value float64
	Name  string
	Unit  string

	// Known is false when the code is missing from the catalog.
	Known bool

	// Field is the snapshot binding from the catalog.
	Field catalog.Field
}

// String renders the item as "name=value unit".
func (i Item) String() string {
	if i.Unit == "" {
		return fmt.Sprintf("%s=%g", i.Name, i.Value)
	}
	return fmt.Sprintf("%s=%g %s", i.Name, i.Value, i.Unit)
}

// DecodeItems decodes every complete record in payload. A nil catalog
// uses catalog.Default().
func DecodeItems(payload []byte, format RecordFormat, cat *catalog.Catalog) []Item {
	items := make([]Item, 0, len(payload)/format.Width())
	for item := range Items(payload, format, cat) {
		items = append(items, item)
	}
	return items
}

// Items returns a sequence over the decoded records of payload.
// The payload is read lazily; it must not change while the sequence is consumed.
func Items(payload []byte, format RecordFormat, cat *catalog.Catalog) iter.Seq[Item] {
	if cat == nil {
		cat = catalog.Default()
	}
	width := format.Width()
	return func(yield func(Item) bool) {
		for off := 0; off+width <= len(payload); off += width {
			rec := payload[off : off+width]

			var item Item
			var ok bool
			if format == Record4BE {
				item, ok = decode4BE(rec, cat)
			} else {
				item, ok = decode5LE(rec, cat), true
			}
			if !ok {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

func decode5LE(rec []byte, cat *catalog.Catalog) Item {
	code := binary.LittleEndian.Uint16(rec[0:2])
	raw := int32(rec[2]) | int32(rec[3])<<8 | int32(rec[4])<<16

	d, known := cat.Resolve(code)
	if known && d.Signed && raw&0x800000 != 0 {
		raw -= 1 << 24
	}
	return newItem(d, known, raw)
}

func decode4BE(rec []byte, cat *catalog.Catalog) (Item, bool) {
	measure := binary.BigEndian.Uint16(rec[0:2])
	if measure&0x1 != 0 {
		return Item{}, false
	}
	code := measure >> 1
	v := binary.BigEndian.Uint16(rec[2:4])

	d, known := cat.Resolve(code)
	raw := int32(v)
	if known && d.Signed {
		raw = int32(int16(v))
	}
	return newItem(d, known, raw), true
}

func newItem(d catalog.Descriptor, known bool, raw int32) Item {
	return Item{
		Code:  d.Code,
		Raw:   raw,
		Value: float64(raw) * d.Scale,
		Name:  d.Name,
		Unit:  d.Unit,
		Known: known,
		Field: d.Field,
	}
}
