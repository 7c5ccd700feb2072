package spf

// bitWriter packs bits MSB-first into a byte buffer. Character records and
// glyph bitmaps share one stream so that compact fonts can carry byte-valued
// fields at unaligned offsets.
type bitWriter struct {
	buf  []byte
	cur  byte
	used uint8
}

func (w *bitWriter) writeBit(on bool) {
	if on {
		w.cur |= 1 << (7 - w.used)
	}
	w.used++
	if w.used == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.used = 0
	}
}

func (w *bitWriter) writeByte(b byte) {
	if w.used == 0 {
		w.buf = append(w.buf, b)
		return
	}
	for i := 7; i >= 0; i-- {
		w.writeBit(b&(1<<i) != 0)
	}
}

// align pads the current byte with zero bits so the next write starts on a
// byte boundary.
func (w *bitWriter) align() {
	for w.used != 0 {
		w.writeBit(false)
	}
}

// bytes finishes the stream, padding any partial final byte with zeros.
func (w *bitWriter) bytes() []byte {
	w.align()
	return w.buf
}

// bitReader is the decoding counterpart of bitWriter.
type bitReader struct {
	data []byte
	pos  int
	bit  uint8
}

// remaining returns the number of unread bits.
func (r *bitReader) remaining() int {
	return (len(r.data)-r.pos)*8 - int(r.bit)
}

func (r *bitReader) readBit() (bool, error) {
	if r.pos >= len(r.data) {
		return false, ErrTruncated
	}
	on := r.data[r.pos]&(1<<(7-r.bit)) != 0
	r.bit++
	if r.bit == 8 {
		r.bit = 0
		r.pos++
	}
	return on, nil
}

func (r *bitReader) readByte() (byte, error) {
	if r.bit == 0 {
		if r.pos >= len(r.data) {
			return 0, ErrTruncated
		}
		b := r.data[r.pos]
		r.pos++
		return b, nil
	}

	var b byte
	for i := 0; i < 8; i++ {
		on, err := r.readBit()
		if err != nil {
			return 0, err
		}
		if on {
			b |= 1 << (7 - i)
		}
	}
	return b, nil
}

// align discards bits up to the next byte boundary.
func (r *bitReader) align() {
	if r.bit != 0 {
		r.bit = 0
		r.pos++
	}
}
