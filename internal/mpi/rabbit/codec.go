package rabbit

import (
	"encoding/binary"
	"fmt"
)

// encode packs a payload as a varint count followed by one varint per value.
func encode(data []int) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(data))
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	for _, v := range data {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return buf
}

// decode reverses encode.
func decode(body []byte) ([]int, error) {
	n, k := binary.Uvarint(body)
	if k <= 0 {
		return nil, fmt.Errorf("bad payload header")
	}
	body = body[k:]
	if n > uint64(len(body)) {
		return nil, fmt.Errorf("payload claims %d values in %d bytes", n, len(body))
	}
	out := make([]int, n)
	for i := range out {
		v, k := binary.Varint(body)
		if k <= 0 {
			return nil, fmt.Errorf("truncated payload at value %d", i)
		}
		out[i] = int(v)
		body = body[k:]
	}
	if len(body) != 0 {
		return nil, fmt.Errorf("%d trailing bytes in payload", len(body))
	}
	return out, nil
}
