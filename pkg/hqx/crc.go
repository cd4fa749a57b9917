package hqx

// crcTable is the CRC-16/XMODEM table (polynomial 0x1021, MSB first).
var crcTable [256]uint16

func init() {
	for i := range crcTable {
		c := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if c&0x8000 != 0 {
				c = c<<1 ^ 0x1021
			} else {
				c <<= 1
			}
		}
		crcTable[i] = c
	}
}

// CRC updates crc with the bytes in b and returns the new value. A BinHex
// checksum starts from zero.
func CRC(b []byte, crc uint16) uint16 {
	for _, c := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>8)^c]
	}
	return crc
}
