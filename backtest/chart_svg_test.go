package backtest

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func chartTestResult(t *testing.T) *Result {
	t.Helper()
	prov := &stubProvider{prices: series(10, 10, 10, 20, 20, 20, 20, 10, 10, 10)}
	res, err := NewRunner(prov).Run(context.Background(), RunConfig{
		Symbol:      "sh600000",
		InitialCash: decimal.NewFromInt(1000),
		ShortWindow: 2,
		LongWindow:  4,
	})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestRenderResultSVG(t *testing.T) {
	res := chartTestResult(t)
	out, err := RenderResultSVG(res, SVGChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	svg := string(out)

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		"sh600000",
		"MA2",
		"MA4",
		"<polyline",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	// One buy and one sell marker.
	if !strings.Contains(svg, colorBuy) || !strings.Contains(svg, colorSell) {
		t.Error("svg missing trade markers")
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Error("svg not closed")
	}
}

func TestRenderResultSVGCustomSize(t *testing.T) {
	res := chartTestResult(t)
	out, err := RenderResultSVG(res, SVGChartOptions{Width: 640, Height: 480})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `width="640" height="480"`) {
		t.Error("svg ignores requested size")
	}
}

func TestRenderResultSVGNotEnoughData(t *testing.T) {
	if _, err := RenderResultSVG(nil, SVGChartOptions{}); err == nil {
		t.Error("expected error for nil result")
	}
	res := &Result{Symbol: "sh600000", Prices: series(10)}
	if _, err := RenderResultSVG(res, SVGChartOptions{}); err == nil {
		t.Error("expected error for single-point series")
	}
}
