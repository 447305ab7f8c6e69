package backtest

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

// SVGChartOptions sizes the rendered chart.
type SVGChartOptions struct {
	Width  int
	Height int
}

func (o SVGChartOptions) withDefaults() SVGChartOptions {
	if o.Width <= 0 {
		o.Width = 980
	}
	if o.Height <= 0 {
		o.Height = 760
	}
	return o
}

const monoFont = "ui-monospace, Menlo, Monaco, Consolas, monospace"

// Palette shared by all panels.
const (
	chartBG    = "#0b1220"
	chartGrid  = "rgba(255,255,255,0.08)"
	chartText  = "rgba(255,255,255,0.85)"
	colorClose = "#38bdf8"
	colorShort = "#fbbf24"
	colorLong  = "#f87171"
	colorBuy   = "#22c55e"
	colorSell  = "#ef4444"
	colorPort  = "#c084fc"
	colorBench = "#2dd4bf"
	colorDD    = "#ef4444"
)

// RenderResultSVG draws the three-panel backtest chart: close price with both
// moving averages and BUY/SELL markers, portfolio value against the
// buy-and-hold benchmark, and drawdown below the running peak.
func RenderResultSVG(res *Result, opt SVGChartOptions) ([]byte, error) {
	opt = opt.withDefaults()
	if res == nil || len(res.Prices) < 2 {
		return nil, fmt.Errorf("not enough data points to chart")
	}

	w := float64(opt.Width)
	h := float64(opt.Height)
	mLeft := 70.0
	mRight := 20.0
	plotW := w - mLeft - mRight
	if plotW <= 10 {
		return nil, fmt.Errorf("invalid chart size")
	}

	// Panel heights split roughly 3:2:1.5 like the layout this replaces.
	gap := 34.0
	top := 28.0
	usable := h - top - gap*2 - 30
	h1 := usable * 3.0 / 6.5
	h2 := usable * 2.0 / 6.5
	h3 := usable * 1.5 / 6.5

	n := len(res.Prices)
	xAt := func(i int) float64 {
		return mLeft + (float64(i)+0.5)*plotW/float64(n)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + strconv.Itoa(opt.Width) + `" height="` + strconv.Itoa(opt.Height) + `" viewBox="0 0 ` + strconv.Itoa(opt.Width) + ` ` + strconv.Itoa(opt.Height) + `">` + "\n")
	buf.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="` + chartBG + `"/>` + "\n")

	firstD := res.Prices[0].Date.Format("2006-01-02")
	lastD := res.Prices[n-1].Date.Format("2006-01-02")
	title := strings.TrimSpace(res.Symbol)
	if title == "" {
		title = "UNKNOWN"
	}
	buf.WriteString(svgText(mLeft, 18, chartText, 14,
		fmt.Sprintf("%s  %s ~ %s  (%s)", title, firstD, lastD, res.Strategy)))

	shortLabel := "short MA"
	longLabel := "long MA"
	if res.ShortWindow > 0 && res.LongWindow > 0 {
		shortLabel = fmt.Sprintf("MA%d", res.ShortWindow)
		longLabel = fmt.Sprintf("MA%d", res.LongWindow)
	}

	// Panel 1: price, MAs, trade markers.
	p1Top := top + 12
	closes := make([]float64, n)
	shorts := make([]float64, n)
	longs := make([]float64, n)
	for i := range res.Prices {
		closes[i] = res.Prices[i].Close.InexactFloat64()
		shorts[i] = math.NaN()
		longs[i] = math.NaN()
	}
	for i := range res.Signals {
		if i >= n {
			break
		}
		if res.Signals[i].ShortMA.Valid {
			shorts[i] = res.Signals[i].ShortMA.Decimal.InexactFloat64()
		}
		if res.Signals[i].LongMA.Valid {
			longs[i] = res.Signals[i].LongMA.Decimal.InexactFloat64()
		}
	}
	minP, maxP := seriesRange(closes, shorts, longs)
	if !(maxP > minP) {
		// Flat series: pad an artificial band so the line sits mid-panel.
		minP -= 1
		maxP += 1
	}
	y1 := scaler(p1Top, h1, minP, maxP)
	writePanel(&buf, mLeft, plotW, p1Top, h1, minP, maxP)
	buf.WriteString(svgPolyline(xAt, y1, closes, colorClose, 1.2))
	buf.WriteString(svgPolyline(xAt, y1, shorts, colorShort, 1.4))
	buf.WriteString(svgPolyline(xAt, y1, longs, colorLong, 1.4))
	buf.WriteString(svgText(mLeft+6, p1Top+14, colorClose, 12, "close"))
	buf.WriteString(svgText(mLeft+66, p1Top+14, colorShort, 12, shortLabel))
	buf.WriteString(svgText(mLeft+126, p1Top+14, colorLong, 12, longLabel))

	dateIdx := make(map[string]int, n)
	for i := range res.Prices {
		dateIdx[res.Prices[i].Date.Format("2006-01-02")] = i
	}
	for _, t := range res.Trades {
		i, ok := dateIdx[t.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		x := xAt(i)
		y := y1(t.Price.InexactFloat64())
		if t.Type == ActionBuy {
			buf.WriteString(svgMarkerUp(x, y, colorBuy))
		} else {
			buf.WriteString(svgMarkerDown(x, y, colorSell))
		}
	}

	// Panel 2: portfolio vs benchmark.
	p2Top := p1Top + h1 + gap
	port := make([]float64, n)
	bench := make([]float64, n)
	for i := 0; i < n; i++ {
		port[i] = math.NaN()
		bench[i] = math.NaN()
		if i < len(res.Portfolio) {
			port[i] = res.Portfolio[i].Value.InexactFloat64()
		}
		if i < len(res.Benchmark) {
			bench[i] = res.Benchmark[i].Value.InexactFloat64()
		}
	}
	minV, maxV := seriesRange(port, bench)
	if !(maxV > minV) {
		minV -= 1
		maxV += 1
	}
	y2 := scaler(p2Top, h2, minV, maxV)
	writePanel(&buf, mLeft, plotW, p2Top, h2, minV, maxV)
	buf.WriteString(svgPolyline(xAt, y2, port, colorPort, 1.8))
	buf.WriteString(svgDashedPolyline(xAt, y2, bench, colorBench, 1.8))
	buf.WriteString(svgText(mLeft+6, p2Top+14, colorPort, 12,
		fmt.Sprintf("strategy %+0.1f%%", res.Metrics.StrategyReturn)))
	buf.WriteString(svgText(mLeft+146, p2Top+14, colorBench, 12,
		fmt.Sprintf("buy&hold %+0.1f%%", res.Metrics.BuyHoldReturn)))

	// Panel 3: drawdown area.
	p3Top := p2Top + h2 + gap
	dd := make([]float64, n)
	peak := math.Inf(-1)
	for i := 0; i < n && i < len(res.Portfolio); i++ {
		v := res.Portfolio[i].Value.InexactFloat64()
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd[i] = (v - peak) / peak * 100
		}
	}
	minDD := 0.0
	for _, v := range dd {
		if v < minDD {
			minDD = v
		}
	}
	if minDD > -0.5 {
		minDD = -0.5
	}
	y3 := scaler(p3Top, h3, minDD, 0)
	writePanel(&buf, mLeft, plotW, p3Top, h3, minDD, 0)
	buf.WriteString(svgArea(xAt, y3, dd, p3Top, colorDD))
	buf.WriteString(svgPolyline(xAt, y3, dd, colorDD, 1))
	buf.WriteString(svgText(mLeft+6, p3Top+14, chartText, 12,
		fmt.Sprintf("DRAWDOWN  max %0.1f%%", res.Metrics.MaxDrawdown)))

	// Footer dates.
	yFoot := p3Top + h3 + 22
	buf.WriteString(svgText(mLeft, yFoot, chartText, 12, firstD))
	buf.WriteString(svgText(mLeft+plotW-70, yFoot, chartText, 12, lastD))

	buf.WriteString(`</svg>` + "\n")
	return buf.Bytes(), nil
}

// seriesRange returns the min/max over all finite values.
func seriesRange(series ...[]float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 0
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func scaler(top, height, lo, hi float64) func(float64) float64 {
	return func(v float64) float64 {
		r := (v - lo) / (hi - lo)
		r = math.Max(0, math.Min(1, r))
		return top + (1.0-r)*height
	}
}

// writePanel draws the grid and left-edge value labels for one panel.
func writePanel(buf *bytes.Buffer, left, width, top, height, lo, hi float64) {
	for k := 0; k <= 4; k++ {
		y := top + (float64(k)/4.0)*height
		buf.WriteString(`<line x1="` + fmtFloat(left) + `" y1="` + fmtFloat(y) + `" x2="` + fmtFloat(left+width) + `" y2="` + fmtFloat(y) + `" stroke="` + chartGrid + `" stroke-width="1"/>` + "\n")
		v := hi - (float64(k)/4.0)*(hi-lo)
		buf.WriteString(svgText(6, y+4, chartText, 12, fmtPrice(v)))
	}
}

func svgText(x, y float64, color string, size int, text string) string {
	return `<text x="` + fmtFloat(x) + `" y="` + fmtFloat(y) + `" fill="` + color + `" font-size="` + strconv.Itoa(size) + `" font-family="` + monoFont + `">` +
		html.EscapeString(text) + `</text>` + "\n"
}

func polylinePoints(xAt func(int) float64, yAt func(float64) float64, vals []float64) string {
	var sb strings.Builder
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sb.WriteString(fmtFloat(xAt(i)))
		sb.WriteString(",")
		sb.WriteString(fmtFloat(yAt(v)))
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}

func svgPolyline(xAt func(int) float64, yAt func(float64) float64, vals []float64, color string, width float64) string {
	pts := polylinePoints(xAt, yAt, vals)
	if pts == "" {
		return ""
	}
	return `<polyline fill="none" stroke="` + color + `" stroke-width="` + fmtFloat(width) + `" points="` + pts + `"/>` + "\n"
}

func svgDashedPolyline(xAt func(int) float64, yAt func(float64) float64, vals []float64, color string, width float64) string {
	pts := polylinePoints(xAt, yAt, vals)
	if pts == "" {
		return ""
	}
	return `<polyline fill="none" stroke="` + color + `" stroke-width="` + fmtFloat(width) + `" stroke-dasharray="6 6" points="` + pts + `"/>` + "\n"
}

// svgArea closes the polyline against the panel top (value 0 for drawdown).
func svgArea(xAt func(int) float64, yAt func(float64) float64, vals []float64, top float64, color string) string {
	pts := polylinePoints(xAt, yAt, vals)
	if pts == "" {
		return ""
	}
	first := xAt(0)
	last := xAt(len(vals) - 1)
	all := fmtFloat(first) + "," + fmtFloat(top) + " " + pts + " " + fmtFloat(last) + "," + fmtFloat(top)
	return `<polygon fill="` + color + `" opacity="0.35" points="` + all + `"/>` + "\n"
}

// svgMarkerUp/Down draw the BUY/SELL triangles next to the fill price.
func svgMarkerUp(x, y float64, color string) string {
	return `<polygon fill="` + color + `" points="` +
		fmtFloat(x) + "," + fmtFloat(y-10) + " " +
		fmtFloat(x-5) + "," + fmtFloat(y-2) + " " +
		fmtFloat(x+5) + "," + fmtFloat(y-2) + `"/>` + "\n"
}

func svgMarkerDown(x, y float64, color string) string {
	return `<polygon fill="` + color + `" points="` +
		fmtFloat(x) + "," + fmtFloat(y+10) + " " +
		fmtFloat(x-5) + "," + fmtFloat(y+2) + " " +
		fmtFloat(x+5) + "," + fmtFloat(y+2) + `"/>` + "\n"
}

func fmtFloat(x float64) string {
	// stable compact formatting for SVG attributes
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func fmtPrice(p float64) string {
	if p >= 1000 || p <= -1000 {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	if p >= 100 || p <= -100 {
		return strconv.FormatFloat(p, 'f', 1, 64)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}
