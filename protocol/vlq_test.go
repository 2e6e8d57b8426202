package protocol

import "testing"

func TestVLQEncodeDecodeInt(t *testing.T) {
	testCases := []int32{
		0, 1, -1, 31, -32, 95, 96, -33, 127, -127, 128, 1000, -1000,
		65535, -65535, 1000000, -1000000, 1 << 30, -(1 << 30),
	}

	for _, expected := range testCases {
		output := NewScratchOutput()
		EncodeVLQInt(output, expected)
		encoded := append([]byte(nil), output.Result()...)

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("Expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}
		if len(data) != 0 {
			t.Errorf("Value %d: %d bytes left after decode", expected, len(data))
		}
	}
}

func TestVLQSingleByteRange(t *testing.T) {
	for _, v := range []int32{-32, 0, 95} {
		output := NewScratchOutput()
		EncodeVLQInt(output, v)
		if n := len(output.Result()); n != 1 {
			t.Errorf("Expected %d to encode in 1 byte, got %d", v, n)
		}
	}
}

func TestVLQUintRoundTrip(t *testing.T) {
	for _, expected := range []uint32{0, 127, 128, 65535, 1000000, 0xFFFFFFFF} {
		output := NewScratchOutput()
		EncodeVLQUint(output, expected)
		data := output.Result()

		decoded, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("Failed to decode %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("Expected %d, got %d", expected, decoded)
		}
	}
}

func TestVLQString(t *testing.T) {
	for _, expected := range []string{"", "hello", "Wake up 07:30"} {
		output := NewScratchOutput()
		EncodeVLQString(output, expected)
		data := output.Result()

		decoded, err := DecodeVLQString(&data)
		if err != nil {
			t.Errorf("Failed to decode string '%s': %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("Expected '%s', got '%s'", expected, decoded)
		}
	}
}

func TestVLQArgs(t *testing.T) {
	output := NewScratchOutput()
	EncodeArgs(output, 2026, 10, 16)
	data := output.Result()

	var year, month, day uint32
	if err := DecodeArgs(&data, &year, &month, &day); err != nil {
		t.Fatalf("DecodeArgs failed: %v", err)
	}
	if year != 2026 || month != 10 || day != 16 {
		t.Errorf("Expected 2026-10-16, got %d-%d-%d", year, month, day)
	}

	var extra uint32
	if err := DecodeArgs(&data, &extra); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
}

func TestVLQErrors(t *testing.T) {
	data := []byte{0x80}
	if _, err := DecodeVLQInt(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ for overlong value, got %v", err)
	}

	data = []byte{5, 'a'}
	if _, err := DecodeVLQBytes(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for short string, got %v", err)
	}
}
