package uuid

import "testing"

func TestNew_VersionAndVariant(t *testing.T) {
	u := New()
	if u[6]>>4 != 4 {
		t.Fatalf("version bits wrong: %x", u[6])
	}
	if u[8]>>6 != 2 {
		t.Fatalf("variant bits wrong: %x", u[8])
	}
}

func TestParse_Roundtrip(t *testing.T) {
	u := New()

	parsed, err := Parse(u.String())
	if err != nil {
		t.Fatalf("failed to parse formatted uuid: %v", err)
	}
	if parsed != u {
		t.Fatalf("roundtrip mismatch: got %s want %s", parsed, u)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "not-a-uuid", "00000000-0000-0000-0000", "zzzzzzzz-zzzz-4zzz-8zzz-zzzzzzzzzzzz"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
