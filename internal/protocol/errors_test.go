package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{"", ErrProtoBadRequest, ErrBadRequest, ErrInvalidTarget, ErrInternal} {
		if !IsKnownCode(code) {
			t.Fatalf("IsKnownCode(%q) = false", code)
		}
	}
	if IsKnownCode("E_MADE_UP") {
		t.Fatalf("unknown code accepted")
	}
}

func TestDecodeBase(t *testing.T) {
	base, err := DecodeBase([]byte(`{"type":"ACT","protocol_version":"1.0","action":"SET_BLOCK"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if base.Type != TypeAct || base.ProtocolVersion != Version {
		t.Fatalf("unexpected base: %+v", base)
	}
	if _, err := DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
