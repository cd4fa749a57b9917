package codec

import (
	"fmt"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

// RFC 1924 character set, as used by git binary patches and Mercurial.
const base85Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!#$%&()*+-;<=>?@^_`{|}~"

var base85Decode [256]int16

func init() {
	for i := range base85Decode {
		base85Decode[i] = -1
	}
	for i := 0; i < len(base85Alphabet); i++ {
		base85Decode[base85Alphabet[i]] = int16(i)
	}
}

// base85Encode encodes b in 4-byte groups. A short final group is padded
// with zeros for encoding and the padding characters are dropped again.
func base85Encode(b []byte) []byte {
	out := make([]byte, 0, (len(b)+3)/4*5)
	for i := 0; i < len(b); i += 4 {
		var g [4]byte
		n := copy(g[:], b[i:])
		v := uint32(g[0])<<24 | uint32(g[1])<<16 | uint32(g[2])<<8 | uint32(g[3])
		var enc [5]byte
		for j := 4; j >= 0; j-- {
			enc[j] = base85Alphabet[v%85]
			v /= 85
		}
		out = append(out, enc[:n+1]...)
	}
	return out
}

func base85DecodeBytes(b []byte) ([]byte, error) {
	padding := (5 - len(b)%5) % 5
	out := make([]byte, 0, (len(b)+padding)/5*4)
	for i := 0; i < len(b); i += 5 {
		var v uint64
		for j := i; j < i+5; j++ {
			d := int16(84) // '~'
			if j < len(b) {
				d = base85Decode[b[j]]
				if d < 0 {
					return nil, fmt.Errorf("%w: bad base85 character at position %d", codecerr.ErrMalformed, j)
				}
			}
			v = v*85 + uint64(d)
		}
		if v > 0xffffffff {
			return nil, fmt.Errorf("%w: base85 overflow in hunk starting at byte %d", codecerr.ErrMalformed, i)
		}
		out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return out[:len(out)-padding], nil
}
