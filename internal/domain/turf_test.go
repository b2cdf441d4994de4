package domain

import (
	"errors"
	"testing"
)

func TestLookupRate(t *testing.T) {
	tests := []struct {
		name        string
		turfType    TurfType
		wantPrice   int64
		wantAdvance int64
		wantErr     error
	}{
		{name: "football full court", turfType: TurfFootballFull, wantPrice: 1000, wantAdvance: 300},
		{name: "football half court", turfType: TurfFootballHalf, wantPrice: 600, wantAdvance: 200},
		{name: "cricket", turfType: TurfCricket, wantPrice: 1000, wantAdvance: 300},
		{name: "unknown type", turfType: TurfType("tennis"), wantErr: ErrUnknownTurfType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := LookupRate(tt.turfType)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LookupRate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupRate() unexpected error: %v", err)
			}
			if rate.Price != tt.wantPrice {
				t.Errorf("Price = %d, want %d", rate.Price, tt.wantPrice)
			}
			if rate.Advance != tt.wantAdvance {
				t.Errorf("Advance = %d, want %d", rate.Advance, tt.wantAdvance)
			}
		})
	}
}

func TestQuoteFor(t *testing.T) {
	tests := []struct {
		name          string
		turfType      TurfType
		slots         int
		wantTotal     int64
		wantAdvance   int64
		wantRemaining int64
		wantErr       error
	}{
		{
			name:          "half court three slots",
			turfType:      TurfFootballHalf,
			slots:         3,
			wantTotal:     1800,
			wantAdvance:   600,
			wantRemaining: 1200,
		},
		{
			name:          "cricket single slot",
			turfType:      TurfCricket,
			slots:         1,
			wantTotal:     1000,
			wantAdvance:   300,
			wantRemaining: 700,
		},
		{
			name:     "zero slots yields zero quote",
			turfType: TurfFootballFull,
			slots:    0,
		},
		{
			name:     "negative slot count",
			turfType: TurfFootballFull,
			slots:    -1,
			wantErr:  ErrInvalidSlotCount,
		},
		{
			name:     "unknown turf type",
			turfType: TurfType("padel"),
			slots:    2,
			wantErr:  ErrUnknownTurfType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := QuoteFor(tt.turfType, tt.slots)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("QuoteFor() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("QuoteFor() unexpected error: %v", err)
			}
			if quote.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", quote.Total, tt.wantTotal)
			}
			if quote.Advance != tt.wantAdvance {
				t.Errorf("Advance = %d, want %d", quote.Advance, tt.wantAdvance)
			}
			if quote.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", quote.Remaining, tt.wantRemaining)
			}
			if quote.Remaining != quote.Total-quote.Advance {
				t.Errorf("Remaining invariant broken: %d != %d - %d", quote.Remaining, quote.Total, quote.Advance)
			}
		})
	}
}

func TestSlotGrid(t *testing.T) {
	grid := SlotGrid()

	if len(grid) != SlotCount {
		t.Fatalf("grid length = %d, want %d", len(grid), SlotCount)
	}
	if grid[0] != "05:00" {
		t.Errorf("first slot = %s, want 05:00", grid[0])
	}
	if grid[len(grid)-1] != "23:00" {
		t.Errorf("last slot = %s, want 23:00", grid[len(grid)-1])
	}
	for _, label := range grid {
		if !IsValidSlot(label) {
			t.Errorf("grid slot %q not accepted by IsValidSlot", label)
		}
	}
}

func TestValidateSlots(t *testing.T) {
	tests := []struct {
		name    string
		slots   []string
		wantErr bool
	}{
		{name: "valid selection", slots: []string{"18:00", "19:00"}},
		{name: "empty selection is valid here", slots: nil},
		{name: "off-grid slot", slots: []string{"04:00"}, wantErr: true},
		{name: "malformed label", slots: []string{"6pm"}, wantErr: true},
		{name: "half hour label", slots: []string{"18:30"}, wantErr: true},
		{name: "duplicate slot", slots: []string{"18:00", "18:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlots(tt.slots)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlots(%v) error = %v, wantErr %v", tt.slots, err, tt.wantErr)
			}
		})
	}
}
