package ipc

import (
	"github.com/qwireio/qwire/endian"
)

// compressThreshold is the framed-message size above which compression is
// attempted. Small messages cost more to compress than to send.
const compressThreshold = 2000

// compressMessage applies the protocol's block compression to a framed
// message. The compressed frame is:
//
//	[endian:1][msgType:1][0x01][0x00][compressedLen:4][uncompressedLen:4][blocks]
//
// Blocks are groups of eight items behind a control byte: a zero control
// bit is a literal byte, a one bit is a two-byte back-reference (hash slot,
// extension length 0-255) into the already-reconstructed output. Matching
// starts at message offset 8 so the header itself is never compressed.
//
// Returns the original message unchanged (ok=false) when it is under the
// threshold or does not shrink.
func compressMessage(src []byte, engine endian.EndianEngine) ([]byte, bool) {
	t := len(src)
	if t <= compressThreshold {
		return src, false
	}

	dst := make([]byte, t/2)
	copy(dst, src[:4])
	dst[2] = 1 // compressed-message flag
	engine.PutUint32(dst[8:12], uint32(t))

	var i, f, h0, h, p, s0 int
	a := make([]int, 256)
	c, d := 12, 12
	end := len(dst)
	s := 8

	for s < t {
		if i == 0 {
			// Worst case for one control group is 17 bytes; if that no
			// longer fits in half the input, compression is not paying off.
			if d > end-17 {
				return src, false
			}
			i = 1
			dst[c] = byte(f)
			c = d
			d++
			f = 0
		}

		literal := s > t-3
		if !literal {
			h = int(src[s] ^ src[s+1])
			p = a[h]
			literal = p == 0 || src[s] != src[p]
		}
		if s0 > 0 {
			a[h0] = s0
			s0 = 0
		}

		if literal {
			h0 = h
			s0 = s
			dst[d] = src[s]
			d++
			s++
		} else {
			a[h] = s
			f |= i
			p += 2
			s += 2
			r := s
			q := s + 255
			if q > t {
				q = t
			}
			for src[p] == src[s] {
				s++
				if s >= q {
					break
				}
				p++
			}
			dst[d] = byte(h)
			d++
			dst[d] = byte(s - r)
			d++
		}

		i *= 2
		if i == 256 {
			i = 0
		}
	}

	dst[c] = byte(f)
	engine.PutUint32(dst[4:8], uint32(d))

	return dst[:d], true
}
