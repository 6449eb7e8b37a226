// Package encoding holds the compact wire forms of bulk terrain data.
// Chunk block arrays are mostly long runs of the same id (air above the
// surface, stone below), so run-length pairs compress them well before
// they ever reach a JSON payload.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE packs a block id array into base64(varint pairs), each pair
// being (id, run length).
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(ids); {
		id := ids[i]
		run := 1
		for i+run < len(ids) && ids[i+run] == id {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(id))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE is the inverse of EncodeRLE. Ids outside the uint16 range
// are rejected rather than truncated.
func DecodeRLE(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		id, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at offset %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at offset %d", i)
		}
		i += n
		if id > 0xFFFF {
			return nil, fmt.Errorf("block id out of range: %d", id)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(id))
		}
	}
	return out, nil
}
