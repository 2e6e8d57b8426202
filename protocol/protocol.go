// Package protocol implements the framed console link between the clock and
// a host: VLQ-encoded commands inside length-prefixed frames carrying a
// sequence number and a CRC16 trailer.
package protocol

// Version of the console link, reported in the dictionary
const Version = "1"

// Frame layout: [len][seq][payload...][crc hi][crc lo][sync]
const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64

	posLen = 0
	posSeq = 1

	SyncByte = 0x7E

	// SeqDest marks frames travelling on the link; the low nibble counts
	SeqDest = 0x10
	SeqMask = 0x0F

	// OutputMax is the size of the device's scratch output buffer
	OutputMax = 512
)

// nextSeq advances a link sequence number
func nextSeq(seq uint8) uint8 {
	return ((seq + 1) & SeqMask) | SeqDest
}
