package panels

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/pricefeed"
	"github.com/zappabad/memex/tui/styles"
)

// CandlestickPanel draws the candle history of the selected asset.
type CandlestickPanel struct {
	asset   market.Asset
	candles []pricefeed.Candle

	focused bool
	width   int
	height  int
}

// NewCandlestickPanel creates a new candlestick chart panel.
func NewCandlestickPanel() *CandlestickPanel {
	return &CandlestickPanel{}
}

// Init initializes the panel.
func (p *CandlestickPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *CandlestickPanel) Update(msg tea.Msg) (*CandlestickPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *CandlestickPanel) View() string {
	name := "—"
	if p.asset.ID != "" {
		name = p.asset.Label()
	}

	var content strings.Builder

	chartWidth := p.width - 4
	chartHeight := p.height - 4
	if chartHeight < 5 {
		chartHeight = 5
	}

	if len(p.candles) == 0 {
		content.WriteString(styles.MutedStyle.Render("Нет данных..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 График - %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *CandlestickPanel) renderChart(width, height int) string {
	// 9 chars of price axis plus a separator.
	plotWidth := width - 10
	if plotWidth < 10 {
		plotWidth = 10
	}

	// Each candle takes a glyph and a space.
	show := plotWidth / 2
	if show < 1 {
		show = 1
	}
	candles := p.candles
	if len(candles) > show {
		candles = candles[len(candles)-show:]
	}

	minPrice, maxPrice := candles[0].Low, candles[0].High
	for _, c := range candles {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}

	pad := (maxPrice - minPrice) * 0.1
	if pad <= 0 {
		pad = maxPrice * 0.01
	}
	minPrice -= pad
	maxPrice += pad

	// Two rows for the time axis.
	rows := height - 3
	if rows < 5 {
		rows = 5
	}

	var result strings.Builder

	for row := 0; row < rows; row++ {
		price := yToPrice(row, minPrice, maxPrice, rows)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8s │", styles.FormatPrice(price))))

		for _, c := range candles {
			style := styles.CandleDownStyle
			if c.Bullish() {
				style = styles.CandleUpStyle
			}
			result.WriteString(style.Render(string(candleGlyph(c, row, minPrice, maxPrice, rows))))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range candles {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Minute labels every tenth candle.
	result.WriteString("          ")
	for i := 0; i < len(candles); i++ {
		if i%10 == 0 && i+2 < len(candles) {
			result.WriteString(styles.ChartLabelStyle.Render(time.Unix(candles[i].Time, 0).Format("15:04")))
			i += 2
			result.WriteString(" ")
			continue
		}
		result.WriteString("  ")
	}

	return result.String()
}

// candleGlyph returns the glyph of c at a chart row: body, wick or blank.
func candleGlyph(c pricefeed.Candle, row int, minPrice, maxPrice float64, height int) rune {
	rowPrice := yToPrice(row, minPrice, maxPrice, height)

	bodyTop, bodyBottom := c.Open, c.Close
	if c.Close > c.Open {
		bodyTop, bodyBottom = c.Close, c.Open
	}

	// Half a row of tolerance maps continuous prices onto discrete rows.
	tolerance := (maxPrice - minPrice) / float64(height*2)

	switch {
	case rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance:
		return '┃'
	case rowPrice <= c.High+tolerance && rowPrice > bodyTop:
		return '│'
	case rowPrice >= c.Low-tolerance && rowPrice < bodyBottom:
		return '│'
	}
	return ' '
}

func yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}

// SetFocus sets the focus state of the panel.
func (p *CandlestickPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *CandlestickPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetCandles replaces the charted asset and its candles.
func (p *CandlestickPanel) SetCandles(asset market.Asset, candles []pricefeed.Candle) {
	p.asset = asset
	p.candles = candles
}
