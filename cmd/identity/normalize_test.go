package identity

import "testing"

func TestParseLoginKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		wantKind LoginKeyKind
		want     string
	}{
		{in: "+998 (90) 123-45-67", wantKind: LoginKeyPhone, want: "+998901234567"},
		{in: "  +999 ", wantKind: LoginKeyPhone, want: "+999"},
		{in: "90.123.45.67", wantKind: LoginKeyPhone, want: "901234567"},
		{in: " Anvar@Example.COM ", wantKind: LoginKeyEmail, want: "anvar@example.com"},
		{in: "", wantKind: LoginKeyPhone, want: ""},
	}

	for _, tc := range cases {
		kind, got := ParseLoginKey(tc.in)
		if kind != tc.wantKind || got != tc.want {
			t.Fatalf("ParseLoginKey(%q)=(%v,%q) want (%v,%q)", tc.in, kind, got, tc.wantKind, tc.want)
		}
	}
}
