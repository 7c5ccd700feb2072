package spf

// checksum24 sums every byte of the given parts into a 24-bit value, returned
// little-endian. The header stores this over the whole file minus the three
// checksum bytes themselves.
func checksum24(parts ...[]byte) [3]byte {
	var sum uint32
	for _, part := range parts {
		for _, b := range part {
			sum += uint32(b)
		}
	}
	sum &= 0xFFFFFF
	return [3]byte{byte(sum), byte(sum >> 8), byte(sum >> 16)}
}
