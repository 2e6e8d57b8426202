package protocol

import "bytes"

// Frame is one validated frame taken off the link
type Frame struct {
	Seq     uint8
	Payload []byte
}

// frameParser splits a byte stream into frames, dropping into resync mode
// on any malformed frame until the next sync byte.
type frameParser struct {
	synced bool
}

// parse calls fn for every complete frame in data and returns the number of
// bytes consumed. Bytes of a partial frame are left for the next call.
// resynced is set when the parser found a sync byte after losing framing.
func (p *frameParser) parse(data []byte, fn func(Frame)) (consumed int, resynced bool) {
	total := len(data)

	for len(data) > 0 {
		if !p.synced {
			i := bytes.IndexByte(data, SyncByte)
			if i < 0 {
				data = nil
				break
			}
			data = data[i+1:]
			p.synced = true
			resynced = true
			continue
		}

		if data[0] == SyncByte {
			data = data[1:]
			continue
		}
		if len(data) < FrameMin {
			break
		}

		n := int(data[posLen])
		if n < FrameMin || n > FrameMax || data[posSeq]&^SeqMask != SeqDest {
			p.synced = false
			continue
		}
		if len(data) < n {
			break
		}
		if data[n-1] != SyncByte {
			p.synced = false
			continue
		}
		crc := uint16(data[n-3])<<8 | uint16(data[n-2])
		if crc != CRC16(data[:n-TrailerSize]) {
			p.synced = false
			continue
		}

		fn(Frame{Seq: data[posSeq], Payload: data[HeaderSize : n-TrailerSize]})
		data = data[n:]
	}

	return total - len(data), resynced
}

// appendFrame wraps payload in a frame with the given sequence byte
func appendFrame(dst []byte, seq uint8, payload []byte) []byte {
	start := len(dst)
	dst = append(dst, uint8(len(payload)+FrameMin), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc), SyncByte)
}
