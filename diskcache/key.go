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
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
)

// Key is the dual fingerprint of spec.md §4.5 step 1: MD5 is the lookup
// key (and the on-disk path source), CRC32 is a fast collision guard
// re-validated against the stored header on every hit. Both named
// algorithms are mandated by spec.md §6, not swappable design choices, so
// this file uses crypto/md5 and hash/crc32 directly rather than reaching
// for a pack hashing helper.
type Key struct {
	MD5   [16]byte
	CRC32 uint32
}

// ComputeKey concatenates the configured key components in order (e.g.
// scheme, host, URI, query — caller-supplied) and derives both
// fingerprints from the same byte stream, per spec.md §4.5 step 1 and the
// §6 "crc32 is computed over the concatenation of key parts" rule.
func ComputeKey(parts ...string) Key {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}

	return Key{
		MD5:   md5.Sum(buf),
		CRC32: crc32.ChecksumIEEE(buf),
	}
}

// TreeKey splits the 16-byte MD5 into the (key, tie) pair the rb-tree
// index orders by: the first 8 bytes are the primary ordering key, the
// last 8 bytes the tiebreaker for two different keys whose leading half
// happens to collide (spec.md §3 "tree-breaker comparison").
func (k Key) TreeKey() (key, tie uint64) {
	return binary.BigEndian.Uint64(k.MD5[:8]), binary.BigEndian.Uint64(k.MD5[8:])
}

// Hex returns the 32-char hex encoding used for the on-disk path and the
// loader's filename recognition (spec.md §6).
func (k Key) Hex() string {
	return hex.EncodeToString(k.MD5[:])
}

// VariantKey derives the secondary lookup key used when the stored entry
// carries a Vary header: spec.md §4.5 step 4 "compute the variant hash
// from current request headers ... switch key to the variant hash, and
// recurse." variantMaterial is the caller-assembled concatenation of the
// varying request header values, in the order named by the stored Vary
// list.
func VariantKey(mainKey Key, variantMaterial string) Key {
	sum := md5.Sum(append(append([]byte(nil), mainKey.MD5[:]...), variantMaterial...))
	return Key{MD5: sum, CRC32: crc32.ChecksumIEEE([]byte(variantMaterial))}
}

// HashedPath computes "<base>/<level-dirs>/<hex>" from the hex key, where
// level-dirs are slices of the hex taken from the tail, per spec.md §6
// "levels 1:2 gives .../X/YZ/<hex>". levels lists the digit-count for each
// directory level, shallowest (closest to base) first.
func HashedPath(base string, hexKey string, levels []int) string {
	path := base
	pos := len(hexKey)

	for _, l := range levels {
		if l <= 0 || pos-l < 0 {
			continue
		}
		pos -= l
		path += "/" + hexKey[pos:pos+l]
	}

	return path + "/" + hexKey
}
