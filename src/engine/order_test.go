package engine

import "testing"

func TestFillReducesRemainingQuantity(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Buy, 100, 10)
	if err := o.Fill(4); err != nil {
		t.Fatal(err)
	}
	if o.RemainingQuantity() != 6 {
		t.Fatalf("expected 6 remaining, got %d", o.RemainingQuantity())
	}
	if o.FilledQuantity() != 4 {
		t.Fatalf("expected 4 filled, got %d", o.FilledQuantity())
	}
	if o.IsFilled() {
		t.Fatal("order should not be fully filled yet")
	}
}

func TestFillExactRemainingMarksFilled(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Buy, 100, 10)
	if err := o.Fill(10); err != nil {
		t.Fatal(err)
	}
	if !o.IsFilled() {
		t.Fatal("expected order to be fully filled")
	}
}

func TestFillMoreThanRemainingErrors(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Buy, 100, 10)
	err := o.Fill(11)
	if err == nil {
		t.Fatal("expected InvalidFillError")
	}
	if _, ok := err.(*InvalidFillError); !ok {
		t.Fatalf("expected *InvalidFillError, got %T", err)
	}
}

func TestFillZeroErrors(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Buy, 100, 10)
	if err := o.Fill(0); err == nil {
		t.Fatal("expected InvalidFillError for zero quantity")
	}
}

func TestMarketOrderCarriesSentinelUntilConverted(t *testing.T) {
	o := NewMarketOrder(1, Buy, 10)
	if o.Type() != Market {
		t.Fatalf("expected Market type, got %s", o.Type())
	}
	if o.Price() != invalidPrice {
		t.Fatalf("expected sentinel price before conversion, got %d", o.Price())
	}
	if err := o.ToGoodTillCancel(105); err != nil {
		t.Fatal(err)
	}
	if o.Type() != GoodTillCancel {
		t.Fatalf("expected GoodTillCancel after conversion, got %s", o.Type())
	}
	if o.Price() != 105 {
		t.Fatalf("expected price 105, got %d", o.Price())
	}
}

func TestToGoodTillCancelOnNonMarketOrderErrors(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Buy, 100, 10)
	err := o.ToGoodTillCancel(105)
	if err == nil {
		t.Fatal("expected IllegalTransitionError")
	}
	if _, ok := err.(*IllegalTransitionError); !ok {
		t.Fatalf("expected *IllegalTransitionError, got %T", err)
	}
}
