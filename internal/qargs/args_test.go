package qargs

import "testing"

func TestParsePriority(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{"true", KindBool}, {"1", KindBool}, {"yes", KindBool}, {"on", KindBool},
		{"false", KindBool}, {"0", KindBool}, {"no", KindBool}, {"off", KindBool},
		{"42", KindInt}, {"-7", KindInt},
		{"foo", KindString},
	}
	for _, c := range cases {
		if got := Parse(c.raw).Kind; got != c.kind {
			t.Errorf("Parse(%q).Kind = %v, want %v", c.raw, got, c.kind)
		}
	}
}

func TestNewSkipsPluginPathAndMalformed(t *testing.T) {
	a := New([]string{"plugin.so,trace_pc=true,n=42,name=foo,quux=on", "badtoken"})
	if _, ok := a.Get("plugin.so,trace_pc"); ok {
		t.Fatal("plugin path token should not be split as a whole argv entry")
	}
	// The host passes one comma-joined token or one token per key; New splits
	// only on '=', so exercise the one-key-per-token shape explicitly.
	a = New([]string{"plugin.so", "trace_pc=true", "n=42", "name=foo", "quux=on", "badtoken"})
	if !a.Bool("trace_pc", false) {
		t.Fatal("trace_pc should be true")
	}
	if a.Int("n", 0) != 42 {
		t.Fatalf("n = %d, want 42", a.Int("n", 0))
	}
	if a.String("name", "") != "foo" {
		t.Fatalf("name = %q, want foo", a.String("name", ""))
	}
	if !a.Bool("quux", false) {
		t.Fatal("quux should be true")
	}
	if _, ok := a.Get("badtoken"); ok {
		t.Fatal("malformed token without '=' should be skipped")
	}
	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}
}

func TestBoolAnySpelling(t *testing.T) {
	a := New([]string{"plugin.so", "log_pc=on"})
	if !a.BoolAny(false, "trace_pc", "log_pc") {
		t.Fatal("BoolAny should find log_pc when trace_pc is absent")
	}
	if a.BoolAny(false, "trace_branches", "log_branch") {
		t.Fatal("BoolAny should return the default when neither key is present")
	}
}
