package enum

import "testing"

func TestSideParseAndSign(t *testing.T) {
	tests := []struct {
		in   string
		want Side
		ok   bool
		sign int64
	}{
		{"bid", SideBid, true, 1},
		{"ask", SideAsk, true, -1},
		{"buy", _side_beg, false, 0},
		{"", _side_beg, false, 0},
	}
	for _, tc := range tests {
		got, ok := ParseSide(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseSide(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
		if got.IsAvailable() != tc.ok {
			t.Fatalf("IsAvailable(%q) = %v", tc.in, got.IsAvailable())
		}
		if got.Sign() != tc.sign {
			t.Fatalf("Sign(%q) = %d; want %d", tc.in, got.Sign(), tc.sign)
		}
		if tc.ok && got.String() != tc.in {
			t.Fatalf("String() = %q; want %q", got.String(), tc.in)
		}
	}
}

func TestActionParseAndSign(t *testing.T) {
	if a, ok := ParseAction("buy"); !ok || a.Sign() != 1 {
		t.Fatalf("buy: %v %v", a, ok)
	}
	if a, ok := ParseAction("sell"); !ok || a.Sign() != -1 {
		t.Fatalf("sell: %v %v", a, ok)
	}
	if a, ok := ParseAction("bid"); ok || a.IsAvailable() {
		t.Fatalf("bid must not parse as an action")
	}
	if Action(9).IsAvailable() {
		t.Fatalf("out of range action reported available")
	}
}

func TestOrderTypeParse(t *testing.T) {
	for _, s := range []string{"limit", "ioc"} {
		ot, ok := ParseOrderType(s)
		if !ok || !ot.IsAvailable() || ot.String() != s {
			t.Fatalf("ParseOrderType(%q) = %v, %v", s, ot, ok)
		}
	}
	if _, ok := ParseOrderType("market"); ok {
		t.Fatalf("market must be rejected")
	}
}
