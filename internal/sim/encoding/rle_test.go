package encoding

import "testing"

func TestRLERoundTrip(t *testing.T) {
	// Shaped like a real chunk column: long air run, thin varied surface,
	// long stone run.
	in := make([]uint16, 0, 4096)
	for i := 0; i < 1024; i++ {
		in = append(in, 2) // stone
	}
	in = append(in, 3, 3, 4, 1, 1, 1, 5)
	for i := 0; i < 3000; i++ {
		in = append(in, 0) // air
	}

	enc := EncodeRLE(in)
	out, err := DecodeRLE(enc)
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestRLEEmpty(t *testing.T) {
	out, err := DecodeRLE(EncodeRLE(nil))
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty, got %d ids", len(out))
	}
}

func TestRLERejectsGarbage(t *testing.T) {
	if _, err := DecodeRLE("not base64!!"); err == nil {
		t.Fatalf("expected base64 error")
	}
}
