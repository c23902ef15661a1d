package prs

// Encode compresses src into a PRS bitstream. The sliding window never
// reaches further than 8192 bytes back; short copies are preferred whenever
// the match offset and length both fit the short-copy range, per the
// encoder contract. The result always ends with the long-copy EOS marker.
func Encode(src []byte) []byte {
	e := &encoder{controlPos: -1}
	n := len(src)
	idx := newMatchIndex()

	i := 0
	for i < n {
		off, length := idx.find(src, i)
		if length >= 2 {
			if off >= shortOffMin && length <= maxShortLen {
				e.shortCopy(off, length)
			} else {
				e.longCopy(off, length)
			}
			for k := 0; k < length; k++ {
				idx.add(src, i+k)
			}
			i += length
		} else {
			e.literal(src[i])
			idx.add(src, i)
			i++
		}
	}
	e.eos()
	return e.out
}

type encoder struct {
	out        []byte
	controlPos int
	bitsUsed   uint
}

func (e *encoder) putFlag(bit byte) {
	if e.controlPos < 0 {
		e.out = append(e.out, 0)
		e.controlPos = len(e.out) - 1
		e.bitsUsed = 0
	}
	if bit != 0 {
		e.out[e.controlPos] |= 1 << (7 - e.bitsUsed)
	}
	e.bitsUsed++
	if e.bitsUsed == 8 {
		e.controlPos = -1
	}
}

func (e *encoder) literal(b byte) {
	e.putFlag(1)
	e.out = append(e.out, b)
}

func (e *encoder) shortCopy(off, length int) {
	e.putFlag(0)
	e.putFlag(0)
	l := byte(length - 2)
	e.putFlag((l >> 1) & 1)
	e.putFlag(l & 1)
	e.out = append(e.out, byte(int32(off)+256))
}

func (e *encoder) longCopy(off, length int) {
	e.putFlag(0)
	e.putFlag(1)

	lower13 := uint16(int32(off)) & 0x1FFF

	if length >= 3 && length <= 8 {
		lengthField := uint16(length - 2)
		w := (lower13 << 3) | lengthField
		e.out = append(e.out, byte(w), byte(w>>8))
		return
	}

	w := lower13 << 3 // lengthField == 0
	e.out = append(e.out, byte(w), byte(w>>8))
	e.out = append(e.out, byte(length-1))
}

func (e *encoder) eos() {
	e.putFlag(0)
	e.putFlag(1)
	e.out = append(e.out, 0, 0, 0)
}

// matchIndex finds the longest back-reference within the 8192-byte sliding
// window using a 3-byte-prefix hash, the same coarse-grained approach a
// from-scratch LZ77 match finder uses: good enough matches fast, without
// claiming to be optimal-parse.
type matchIndex struct {
	buckets map[[3]byte][]int
}

func newMatchIndex() *matchIndex {
	return &matchIndex{buckets: make(map[[3]byte][]int)}
}

func (m *matchIndex) add(src []byte, pos int) {
	if pos+3 > len(src) {
		return
	}
	var k [3]byte
	copy(k[:], src[pos:pos+3])
	m.buckets[k] = append(m.buckets[k], pos)
}

const maxCandidatesChecked = 48

func (m *matchIndex) find(src []byte, pos int) (bestOff, bestLen int) {
	n := len(src)
	if pos+3 > n {
		return 0, 0
	}
	maxLen := n - pos
	if maxLen > maxLongLen {
		maxLen = maxLongLen
	}

	var k [3]byte
	copy(k[:], src[pos:pos+3])
	cands := m.buckets[k]
	windowStart := pos - windowSize
	checked := 0
	for ci := len(cands) - 1; ci >= 0 && checked < maxCandidatesChecked; ci-- {
		cpos := cands[ci]
		if cpos < windowStart {
			break
		}
		checked++
		l := matchLen(src, cpos, pos, maxLen)
		if l > bestLen {
			bestLen = l
			bestOff = cpos - pos
		}
	}
	return
}

func matchLen(src []byte, a, b, max int) int {
	l := 0
	for l < max && src[a+l] == src[b+l] {
		l++
	}
	return l
}
