package multiaddr

import (
	"bytes"
	"errors"
	"testing"
)

// TestVarintRoundTrip 测试 varint 编解码往返
func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 300, 16384, 1 << 20, 1 << 32}

	for _, v := range values {
		buf := uvarintEncode(v)
		got, n, err := uvarintDecode(buf)
		if err != nil {
			t.Fatalf("uvarintDecode(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip mismatch: got %d, want %d", got, v)
		}
		if n != len(buf) {
			t.Errorf("bytes read mismatch: got %d, want %d", n, len(buf))
		}
	}
}

// TestVarintMalformed 测试非法 varint
func TestVarintMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"Empty", []byte{}},
		{"Unterminated", []byte{0x80}},
		{"Unterminated long", []byte{0xff, 0xff, 0xff}},
		{"Overflow", bytes.Repeat([]byte{0xff}, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := uvarintDecode(tt.buf)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedVarint) {
				t.Errorf("expected ErrMalformedVarint, got %v", err)
			}
		})
	}
}

// TestReadVarintCode 测试协议代码读取
func TestReadVarintCode(t *testing.T) {
	code, n, err := readVarintCode(codeToVarint(P_UDP))
	if err != nil {
		t.Fatalf("readVarintCode error: %v", err)
	}
	if code != P_UDP {
		t.Errorf("got code %d, want %d", code, P_UDP)
	}
	if n != 2 {
		t.Errorf("got %d bytes, want 2", n)
	}

	// 超出 int32 的代码被拒绝
	_, _, err = readVarintCode(uvarintEncode(1 << 40))
	if !errors.Is(err, ErrMalformedVarint) {
		t.Errorf("expected ErrMalformedVarint for oversized code, got %v", err)
	}
}
