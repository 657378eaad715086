/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package diskcache

import (
	"encoding/binary"

	liberr "github.com/nabbar/zfproxy/errors"
)

// HeaderSize is sizeof(cache_header) in spec.md §6: six u64, one u32,
// three u16, then etag_len+etag[42]+vary_len+vary[42]+variant[16].
const HeaderSize = 8*6 + 4 + 2*3 + 1 + 42 + 1 + 42 + 16

// keyBlockPrefix is the literal 6-byte marker spec.md §6 writes between
// the fixed header and the raw key-part bytes.
const keyBlockPrefix = "\nKEY: "

const maxEtagLen = 42
const maxVaryLen = 42

// Header is the bit-exact little-endian on-disk record of spec.md §6.
type Header struct {
	VersionTag    uint64
	ValidSec      uint64
	UpdatingSec   uint64
	ErrorSec      uint64
	LastModified  uint64
	Date          uint64
	CRC32         uint32
	ValidMsec     uint16
	HeaderStart   uint16
	BodyStart     uint16
	ETag          string   // <=42 bytes
	Vary          string   // <=42 bytes
	Variant       [16]byte // MD5 of variant-key material, if Vary != ""
}

// Encode writes the fixed-size header record in little-endian order,
// exactly per spec.md §6's field list.
func (h *Header) Encode() ([]byte, liberr.Error) {
	if len(h.ETag) > maxEtagLen {
		return nil, liberr.New(uint16(ErrorCorruptHeader), "etag exceeds 42 bytes")
	}
	if len(h.Vary) > maxVaryLen {
		return nil, liberr.New(uint16(ErrorCorruptHeader), "vary exceeds 42 bytes")
	}

	buf := make([]byte, HeaderSize)
	o := 0

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[o:], v)
		o += 8
	}
	putU64(h.VersionTag)
	putU64(h.ValidSec)
	putU64(h.UpdatingSec)
	putU64(h.ErrorSec)
	putU64(h.LastModified)
	putU64(h.Date)

	binary.LittleEndian.PutUint32(buf[o:], h.CRC32)
	o += 4

	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(buf[o:], v)
		o += 2
	}
	putU16(h.ValidMsec)
	putU16(h.HeaderStart)
	putU16(h.BodyStart)

	buf[o] = byte(len(h.ETag))
	o++
	copy(buf[o:o+maxEtagLen], h.ETag)
	o += maxEtagLen

	buf[o] = byte(len(h.Vary))
	o++
	copy(buf[o:o+maxVaryLen], h.Vary)
	o += maxVaryLen

	copy(buf[o:o+16], h.Variant[:])
	o += 16

	return buf, nil
}

// DecodeHeader parses a HeaderSize-byte record back into a Header.
func DecodeHeader(buf []byte) (*Header, liberr.Error) {
	if len(buf) < HeaderSize {
		return nil, liberr.New(uint16(ErrorCorruptHeader), "short header read")
	}

	h := &Header{}
	o := 0

	getU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(buf[o:])
		o += 8
		return v
	}
	h.VersionTag = getU64()
	h.ValidSec = getU64()
	h.UpdatingSec = getU64()
	h.ErrorSec = getU64()
	h.LastModified = getU64()
	h.Date = getU64()

	h.CRC32 = binary.LittleEndian.Uint32(buf[o:])
	o += 4

	getU16 := func() uint16 {
		v := binary.LittleEndian.Uint16(buf[o:])
		o += 2
		return v
	}
	h.ValidMsec = getU16()
	h.HeaderStart = getU16()
	h.BodyStart = getU16()

	etagLen := int(buf[o])
	o++
	if etagLen > maxEtagLen {
		return nil, liberr.New(uint16(ErrorCorruptHeader), "etag_len exceeds 42")
	}
	h.ETag = string(buf[o : o+etagLen])
	o += maxEtagLen

	varyLen := int(buf[o])
	o++
	if varyLen > maxVaryLen {
		return nil, liberr.New(uint16(ErrorCorruptHeader), "vary_len exceeds 42")
	}
	h.Vary = string(buf[o : o+varyLen])
	o += maxVaryLen

	copy(h.Variant[:], buf[o:o+16])
	o += 16

	return h, nil
}

// KeyBlock renders the "\nKEY: "+parts+"\n" block spec.md §6 places right
// after the fixed header, at offset header_start.
func KeyBlock(parts ...string) []byte {
	var b []byte
	b = append(b, keyBlockPrefix...)
	for _, p := range parts {
		b = append(b, p...)
	}
	b = append(b, '\n')
	return b
}
