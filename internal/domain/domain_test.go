package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "12.345", want: "12.35"},
		{raw: " 10 ", want: "10"},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("ParsePrice(%q): expected validation error, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", tc.raw, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ParsePrice(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestLineTotalRoundsToCents(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("3.335"), 3)
	if !got.Equal(decimal.RequireFromString("10.02")) {
		t.Fatalf("unexpected line total %s", got)
	}
}

func TestDiscountActiveWindowIsInclusive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := Discount{Start: start, End: start.Add(time.Hour)}
	if !d.ActiveAt(start) || !d.ActiveAt(start.Add(time.Hour)) {
		t.Fatalf("expected window bounds to be active")
	}
	if d.ActiveAt(start.Add(-time.Second)) || d.ActiveAt(start.Add(time.Hour+time.Second)) {
		t.Fatalf("expected outside of window to be inactive")
	}
}

func TestDiscountAmount(t *testing.T) {
	subtotal := decimal.NewFromInt(80)
	pct := Discount{Type: DiscountPercent, Value: decimal.NewFromInt(25)}
	if got := pct.Amount(subtotal); !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("percent discount = %s", got)
	}
	fixed := Discount{Type: DiscountAmount, Value: decimal.NewFromInt(15)}
	if got := fixed.Amount(subtotal); !got.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("fixed discount = %s", got)
	}
	big := Discount{Type: DiscountAmount, Value: decimal.NewFromInt(500)}
	if got := big.Amount(subtotal); !got.Equal(subtotal) {
		t.Fatalf("fixed discount should cap at subtotal, got %s", got)
	}
	unknown := Discount{Type: "bogus", Value: decimal.NewFromInt(5)}
	if got := unknown.Amount(subtotal); !got.IsZero() {
		t.Fatalf("unknown type should not discount, got %s", got)
	}
}

func TestProblemMatchesKindAndValue(t *testing.T) {
	errStock := Rule("no stock")
	wrapped := errors.Join(errors.New("context"), errStock)
	if !errors.Is(wrapped, errStock) || !errors.Is(wrapped, ErrRuleViolation) {
		t.Fatalf("expected problem to match value and kind")
	}
	if Message(wrapped, "fallback") != "no stock" {
		t.Fatalf("unexpected message %q", Message(wrapped, "fallback"))
	}
	if Message(errors.New("raw"), "fallback") != "fallback" {
		t.Fatalf("expected fallback message")
	}
	cause := errors.New("conn reset")
	p := Persistence("save failed", cause)
	if !errors.Is(p, ErrPersistence) || !errors.Is(p, cause) {
		t.Fatalf("persistence problem should unwrap to kind and cause")
	}
}

func TestCartAggregates(t *testing.T) {
	c := Cart{
		"a": {ProductID: "p1", Quantity: 2, TotalItemPrice: decimal.NewFromInt(20)},
		"b": {ProductID: "p2", Quantity: 1, TotalItemPrice: decimal.RequireFromString("5.50"), Subscription: true},
	}
	if c.Quantity() != 3 {
		t.Fatalf("quantity = %d", c.Quantity())
	}
	if !c.Subtotal().Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("subtotal = %s", c.Subtotal())
	}
	if c.SubscriptionProduct() != "p2" {
		t.Fatalf("subscription = %q", c.SubscriptionProduct())
	}
}

func TestParseOptionsIsLenient(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`{"size":"M"}`, 1},
		{`"{\"size\":\"M\",\"color\":\"red\"}"`, 2},
		{`"not json"`, 0},
		{`[1,2]`, 0},
		{`null`, 0},
		{``, 0},
	}
	for _, tc := range cases {
		got := ParseOptions(json.RawMessage(tc.raw))
		if got == nil || len(got) != tc.want {
			t.Fatalf("ParseOptions(%s) = %v", tc.raw, got)
		}
	}
}
