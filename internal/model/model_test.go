package model

import (
	"strconv"
	"testing"
)

func TestQuoteFor(t *testing.T) {
	tests := []struct {
		price    float64
		wantLock float64
	}{
		{price: 12000, wantLock: 600},
		{price: 9999, wantLock: 499.95},
		{price: 1234.57, wantLock: 61.73},
		{price: 0, wantLock: 0},
	}
	for _, tt := range tests {
		q := QuoteFor(Listing{PricePerMonth: tt.price})
		if q.FullRent != tt.price {
			t.Errorf("FullRent = %v, want %v", q.FullRent, tt.price)
		}
		if q.LockAmount != tt.wantLock {
			t.Errorf("price %v: LockAmount = %v, want %v", tt.price, q.LockAmount, tt.wantLock)
		}
		if q.VisitFee != 50 {
			t.Errorf("VisitFee = %v, want 50", q.VisitFee)
		}
	}
}

func TestBookingKind(t *testing.T) {
	for _, k := range []BookingKind{BookingLock, BookingFull, BookingVisit} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if BookingKind("rent").Valid() {
		t.Error("unknown kind reported valid")
	}
	if !BookingLock.Reserves() || !BookingFull.Reserves() {
		t.Error("lock and full must reserve the listing")
	}
	if BookingVisit.Reserves() {
		t.Error("visit must not reserve the listing")
	}
}

func TestFlash(t *testing.T) {
	var s ViewerSession
	s.AddFlash("success", "Logged in successfully!")
	s.AddFlash("error", "nope")
	got := s.TakeFlash()
	if len(got) != 2 || got[0].Message != "Logged in successfully!" {
		t.Fatalf("TakeFlash = %+v", got)
	}
	if len(s.Flash) != 0 {
		t.Errorf("flash not cleared: %+v", s.Flash)
	}
}

func TestFlashKeepsNewest(t *testing.T) {
	var s ViewerSession
	for i := 0; i < MaxFlash+3; i++ {
		s.AddFlash("success", strconv.Itoa(i))
	}
	if len(s.Flash) != MaxFlash {
		t.Fatalf("len = %d, want %d", len(s.Flash), MaxFlash)
	}
	if s.Flash[0].Message != "3" || s.Flash[MaxFlash-1].Message != "7" {
		t.Errorf("kept = %+v", s.Flash)
	}
}
