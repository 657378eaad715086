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

package proxyglue

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	liberr "github.com/nabbar/zfproxy/errors"
)

// v2Magic is the fixed 12-byte PROXY protocol v2 signature, spec.md §6.
var v2Magic = []byte("\r\n\r\n\x00\r\nQUIT\n")

const (
	v2HeaderLen  = 16 // 12-byte magic + 4-byte {version_command, family_transport, length_be16}
	v2AddrV4Len  = 12
	v2AddrV6Len  = 36
	maxV2Length  = 1<<16 - 1
)

// Family is the decoded transport address family of a PROXY header.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyTCP4
	FamilyTCP6
)

// Header is the decoded result of a PROXY protocol v1 or v2 preamble,
// spec.md §6. Unknown reports a v2 header whose command/transport
// combination this proxy does not interpret (only version=2, command=
// PROXY=1, transport=STREAM=1 populate the address fields) — per
// spec.md and Open Question 3, such headers are tolerated, not rejected:
// the connection stream is kept in sync by skipping the declared-length
// address+TLV block without populating SrcAddr/DstAddr/ports.
type Header struct {
	Version   int
	Family    Family
	SrcAddr   string
	DstAddr   string
	SrcPort   int
	DstPort   int
	Unknown   bool
	BytesRead int
}

// Detect peeks at buf (which must hold at least enough bytes to
// disambiguate) and dispatches to ParseV1 or ParseV2 based on the
// leading bytes, returning (nil, nil) if buf doesn't yet carry enough
// data to decide — the caller should buffer more and retry, mirroring
// how the HTTP parser (C7) handles a short read.
func Detect(buf []byte) (*Header, liberr.Error) {
	if len(buf) >= len(v2Magic) && bytes.Equal(buf[:len(v2Magic)], v2Magic) {
		return ParseV2(buf)
	}
	if len(buf) >= 5 && string(buf[:5]) == "PROXY" {
		return ParseV1(buf)
	}
	if len(buf) < len(v2Magic) {
		return nil, nil
	}
	return nil, liberr.New(uint16(ErrorProxyProtoMagic), "neither PROXY v1 nor v2 signature present")
}

// ParseV1 decodes the textual v1 header: "PROXY " (TCP4|TCP6|UNKNOWN)
// " " src " " dst " " src_port " " dst_port "\r\n", spec.md §6.
func ParseV1(buf []byte) (*Header, liberr.Error) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		if len(buf) > 107 { // v1 max line length per the protocol spec
			return nil, liberr.New(uint16(ErrorProxyProtoTruncated), "v1 header exceeds maximum line length without a terminator")
		}
		return nil, nil
	}

	line := string(buf[:idx])
	fields := strings.Split(line, " ")
	if len(fields) < 2 || fields[0] != "PROXY" {
		return nil, liberr.New(uint16(ErrorProxyProtoTruncated), "malformed v1 header line: "+line)
	}

	h := &Header{Version: 1, BytesRead: idx + 2}

	switch fields[1] {
	case "TCP4":
		h.Family = FamilyTCP4
	case "TCP6":
		h.Family = FamilyTCP6
	case "UNKNOWN":
		// UNKNOWN may appear bare ("PROXY UNKNOWN\r\n") or with the full
		// address fields present but unusable; either way it is tolerated
		// without populating addresses, matching the v2 Unknown treatment.
		h.Unknown = true
		return h, nil
	default:
		return nil, liberr.New(uint16(ErrorProxyProtoAddressFamily), "unrecognized v1 transport token: "+fields[1])
	}

	if len(fields) != 6 {
		return nil, liberr.New(uint16(ErrorProxyProtoTruncated), "malformed v1 header line: "+line)
	}

	h.SrcAddr = fields[2]
	h.DstAddr = fields[3]

	sp, serr := strconv.Atoi(fields[4])
	if serr != nil {
		return nil, liberr.New(uint16(ErrorProxyProtoTruncated), "invalid v1 source port: "+fields[4])
	}
	dp, derr := strconv.Atoi(fields[5])
	if derr != nil {
		return nil, liberr.New(uint16(ErrorProxyProtoTruncated), "invalid v1 dest port: "+fields[5])
	}
	h.SrcPort, h.DstPort = sp, dp

	return h, nil
}

// ParseV2 decodes the binary v2 header: 12-byte magic, then 4 bytes
// {version_command, family_transport, length_be16}, then an address
// block (12 bytes v4 / 36 bytes v6), then TLVs, spec.md §6. Only
// version=2, command=PROXY=1, transport=STREAM=1 populate address
// fields; any other combination sets Unknown and skips the declared
// length without interpreting it further (Open Question 3).
func ParseV2(buf []byte) (*Header, liberr.Error) {
	if len(buf) < v2HeaderLen {
		return nil, nil
	}
	if !bytes.Equal(buf[:len(v2Magic)], v2Magic) {
		return nil, liberr.New(uint16(ErrorProxyProtoMagic), "v2 magic sequence mismatch")
	}

	versionCmd := buf[12]
	familyTransport := buf[13]
	length := int(binary.BigEndian.Uint16(buf[14:16]))

	if length > maxV2Length {
		return nil, liberr.New(uint16(ErrorProxyProtoTruncated), fmt.Sprintf("v2 declared length %d exceeds protocol maximum", length))
	}
	total := v2HeaderLen + length
	if len(buf) < total {
		return nil, nil
	}

	h := &Header{Version: 2, BytesRead: total}

	version := versionCmd >> 4
	command := versionCmd & 0x0f
	family := familyTransport >> 4
	transport := familyTransport & 0x0f

	if version != 2 || command != 1 || transport != 1 || (family != 1 && family != 2) {
		h.Unknown = true
		return h, nil
	}

	body := buf[v2HeaderLen:total]

	switch family {
	case 1: // AF_INET
		if len(body) < v2AddrV4Len {
			return nil, liberr.New(uint16(ErrorProxyProtoAddressFamily), "v2 TCP4 address block shorter than 12 bytes")
		}
		h.Family = FamilyTCP4
		h.SrcAddr = ipv4String(body[0:4])
		h.DstAddr = ipv4String(body[4:8])
		h.SrcPort = int(binary.BigEndian.Uint16(body[8:10]))
		h.DstPort = int(binary.BigEndian.Uint16(body[10:12]))
	case 2: // AF_INET6
		if len(body) < v2AddrV6Len {
			return nil, liberr.New(uint16(ErrorProxyProtoAddressFamily), "v2 TCP6 address block shorter than 36 bytes")
		}
		h.Family = FamilyTCP6
		h.SrcAddr = ipv6String(body[0:16])
		h.DstAddr = ipv6String(body[16:32])
		h.SrcPort = int(binary.BigEndian.Uint16(body[32:34]))
		h.DstPort = int(binary.BigEndian.Uint16(body[34:36]))
	}

	return h, nil
}

func ipv4String(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

func ipv6String(b []byte) string {
	parts := make([]string, 8)
	for i := 0; i < 8; i++ {
		parts[i] = fmt.Sprintf("%x", binary.BigEndian.Uint16(b[i*2:i*2+2]))
	}
	return strings.Join(parts, ":")
}
