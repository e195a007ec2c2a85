package export

import (
	"encoding/binary"
	"time"
	"unicode/utf8"
)

const (
	dbfVersion     = 0x03
	dbfHeaderSize  = 32
	dbfFieldSize   = 32
	dbfHeaderEnd   = 0x0D
	dbfFileEnd     = 0x1A
	dbfRecordValid = ' '
)

// dbfField is a fixed width character column.
type dbfField struct {
	Name string
	Size int
}

// parcelFields is the attribute table layout of exported shapefiles.
var parcelFields = []dbfField{
	{Name: "LOT", Size: 10},
	{Name: "SEC", Size: 10},
	{Name: "PLAN", Size: 15},
}

// encodeDBF writes a dBase III table with character fields only.
func encodeDBF(fields []dbfField, rows [][]string, modified time.Time) []byte {
	recordSize := 1
	for _, f := range fields {
		recordSize += f.Size
	}
	headerSize := dbfHeaderSize + dbfFieldSize*len(fields) + 1

	buf := make([]byte, 0, headerSize+recordSize*len(rows)+1)

	year, month, day := modified.Date()
	buf = append(buf, dbfVersion, byte(year-1900), byte(month), byte(day))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(rows)))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(headerSize))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(recordSize))
	buf = append(buf, make([]byte, 20)...)

	for _, f := range fields {
		name := make([]byte, 11)
		copy(name, f.Name)
		buf = append(buf, name...)
		buf = append(buf, 'C')
		buf = append(buf, 0, 0, 0, 0)
		buf = append(buf, byte(f.Size), 0)
		buf = append(buf, make([]byte, 14)...)
	}
	buf = append(buf, dbfHeaderEnd)

	for _, row := range rows {
		buf = append(buf, dbfRecordValid)
		for i, f := range fields {
			var value string
			if i < len(row) {
				value = row[i]
			}
			buf = append(buf, fitField(value, f.Size)...)
		}
	}

	return append(buf, dbfFileEnd)
}

// fitField truncates s to size bytes without splitting a UTF-8 sequence
// and pads it with spaces.
func fitField(s string, size int) []byte {
	b := []byte(s)
	if len(b) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		b = b[:cut]
	}

	out := make([]byte, size)
	n := copy(out, b)
	for i := n; i < size; i++ {
		out[i] = ' '
	}

	return out
}
