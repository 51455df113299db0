package codec

import (
	"bytes"
	"testing"
)

type addr uint64

func TestRoundTrip(t *testing.T) {
	b := make([]byte, 8)

	PutF32(b, float32(1.5))
	if !bytes.Equal(b[:4], []byte{0x00, 0x00, 0xc0, 0x3f}) {
		t.Errorf("PutF32(1.5) = % x", b[:4])
	}
	var f float32
	GetF32(b, &f)
	if f != 1.5 {
		t.Errorf("GetF32() = %v, want 1.5", f)
	}

	PutI32(b, int32(-2))
	var i int32
	GetI32(b, &i)
	if i != -2 {
		t.Errorf("GetI32() = %v, want -2", i)
	}

	PutU64(b, addr(0x1122334455667788))
	if b[0] != 0x88 || b[7] != 0x11 {
		t.Errorf("PutU64 not little-endian: % x", b)
	}
	var a addr
	GetU64(b, &a)
	if a != 0x1122334455667788 {
		t.Errorf("GetU64() = %#x", uint64(a))
	}

	PutF64(b, 0.25)
	var d float64
	GetF64(b, &d)
	if d != 0.25 {
		t.Errorf("GetF64() = %v, want 0.25", d)
	}

	PutI64(b, int64(-7))
	var n int64
	GetI64(b, &n)
	if n != -7 {
		t.Errorf("GetI64() = %v, want -7", n)
	}

	PutU32(b, uint32(9))
	var u uint32
	GetU32(b, &u)
	if u != 9 {
		t.Errorf("GetU32() = %v, want 9", u)
	}
}

type pair struct{ a, b uint32 }

func (p *pair) EncodeGPU(b []byte) {
	PutU32(b[0:], p.a)
	PutU32(b[4:], p.b)
}

func TestEncodeSlice(t *testing.T) {
	got := EncodeSlice([]pair{{1, 2}, {3, 4}}, 12)
	if len(got) != 24 {
		t.Fatalf("len = %d, want 24", len(got))
	}
	if got[0] != 1 || got[4] != 2 || got[12] != 3 || got[16] != 4 || got[8] != 0 {
		t.Errorf("EncodeSlice() = % x", got)
	}
}
