package app

import (
	"context"
	"io"
	"testing"

	"github.com/fd1az/triarb-allocator/internal/logger"
)

func testGenerator(t *testing.T, seed uint64, opts ...GeneratorOption) *Generator {
	t.Helper()
	return NewGenerator(seed, logger.New(io.Discard, logger.LevelInfo, "test", nil), opts...)
}

func TestGenerator_Opportunities(t *testing.T) {
	gen := testGenerator(t, 42)

	opps, err := gen.Opportunities(context.Background(), 5)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	if len(opps) != 5 {
		t.Fatalf("got %d opportunities, want 5", len(opps))
	}

	for _, opp := range opps {
		if opp.ProfitRate() <= 0 {
			t.Errorf("%s: profit rate %g, want positive", opp.ID, opp.ProfitRate())
		}
		if !stablecoins[opp.Source()] {
			t.Errorf("%s: source %s is not a stablecoin", opp.ID, opp.Source())
		}
		if opp.Confidence < minConfidence || opp.Confidence > maxConfidence {
			t.Errorf("%s: confidence %g out of range", opp.ID, opp.Confidence)
		}
		for i, leg := range opp.Legs() {
			if leg.Fee < minLegFee || leg.Fee > maxLegFee {
				t.Errorf("%s leg %d: fee %g out of range", opp.ID, i, leg.Fee)
			}
			if leg.LiquidityCap <= 0 {
				t.Errorf("%s leg %d: liquidity %g, want positive", opp.ID, i, leg.LiquidityCap)
			}
		}
		if opp.MaxPosition != defaultPositionCap {
			t.Errorf("%s: max position %g, want the default cap", opp.ID, opp.MaxPosition)
		}
	}

	// Ranked by confidence-weighted profit, best first.
	for i := 1; i < len(opps); i++ {
		prev := opps[i-1].ProfitRate() * opps[i-1].Confidence
		cur := opps[i].ProfitRate() * opps[i].Confidence
		if cur > prev {
			t.Errorf("batch out of order at %d: %g > %g", i, cur, prev)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := testGenerator(t, 42)
	b := testGenerator(t, 42)

	oppsA, err := a.Opportunities(context.Background(), 5)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	oppsB, err := b.Opportunities(context.Background(), 5)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}

	for i := range oppsA {
		if oppsA[i].ID != oppsB[i].ID {
			t.Errorf("batch %d: %s vs %s", i, oppsA[i].ID, oppsB[i].ID)
		}
		if oppsA[i].ProfitRate() != oppsB[i].ProfitRate() {
			t.Errorf("%s: profit rates diverge", oppsA[i].ID)
		}
	}
}

func TestGenerator_BatchesDriftAcrossPeriods(t *testing.T) {
	gen := testGenerator(t, 42)
	ctx := context.Background()

	first, err := gen.Opportunities(ctx, 8)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	second, err := gen.Opportunities(ctx, 8)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}

	if len(second) != 8 {
		t.Fatalf("second batch = %d, want 8", len(second))
	}

	firstRates := make(map[string]float64, len(first))
	for _, opp := range first {
		firstRates[opp.ID] = opp.ProfitRate()
	}

	// Survivors keep their identity but their edge moves with the walk.
	survivors := 0
	for _, opp := range second {
		if opp.ProfitRate() <= 0 {
			t.Errorf("%s: profit rate %g after drift", opp.ID, opp.ProfitRate())
		}
		prev, ok := firstRates[opp.ID]
		if !ok {
			continue
		}
		survivors++
		if opp.ProfitRate() == prev {
			t.Errorf("%s: profit rate did not drift", opp.ID)
		}
	}
	if survivors == 0 {
		t.Error("no opportunity survived into the second batch")
	}
}

func TestGenerator_WithPositionCaps(t *testing.T) {
	gen := testGenerator(t, 42, WithPositionCaps(map[string]float64{"USDT": 5_000}))

	opps, err := gen.Opportunities(context.Background(), 5)
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}

	for _, opp := range opps {
		if opp.MaxPosition != 5_000 {
			t.Errorf("%s: max position %g, want 5000", opp.ID, opp.MaxPosition)
		}
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	gen := testGenerator(t, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gen.Opportunities(ctx, 5); err == nil {
		t.Error("expected an error on a cancelled context")
	}
}
