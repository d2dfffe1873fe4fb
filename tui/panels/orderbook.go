package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/orderbook"
	"github.com/zappabad/memex/tui/styles"
)

const tradesShown = 8

// OrderbookPanel shows the depth ladder with cumulative depth bars, the
// spread, and the recent trade tape of the selected asset.
type OrderbookPanel struct {
	asset   market.Asset
	current float64
	book    orderbook.Book
	trades  []orderbook.Trade
	focused bool
	width   int
	height  int
}

// NewOrderbookPanel creates a new orderbook panel.
func NewOrderbookPanel() *OrderbookPanel {
	return &OrderbookPanel{}
}

// Init initializes the panel.
func (p *OrderbookPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *OrderbookPanel) Update(msg tea.Msg) (*OrderbookPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *OrderbookPanel) View() string {
	var content strings.Builder

	rowWidth := p.width - 6
	if rowWidth < 24 {
		rowWidth = 24
	}
	content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%10s %6s %6s", "Цена", "Кол", "Всего")))
	content.WriteString("\n")

	// Asks print highest first so the spread sits in the middle.
	for i := len(p.book.Asks) - 1; i >= 0; i-- {
		e := p.book.Asks[i]
		content.WriteString(p.depthRow(e, rowWidth, styles.SellStyle, styles.AskDepthColor))
		content.WriteString("\n")
	}

	mid := styles.BalanceStyle.Render(styles.FormatPrice(p.current))
	if spread := p.book.Spread(); spread > 0 {
		mid += styles.MutedStyle.Render(fmt.Sprintf("  спред %s", styles.FormatPrice(spread)))
	}
	content.WriteString(mid)
	content.WriteString("\n")

	for _, e := range p.book.Bids {
		content.WriteString(p.depthRow(e, rowWidth, styles.BuyStyle, styles.BidDepthColor))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(styles.HeaderStyle.Render("Последние сделки"))
	content.WriteString("\n")

	trades := p.trades
	if len(trades) > tradesShown {
		trades = trades[:tradesShown]
	}
	for _, t := range trades {
		sideStyle := styles.BuyStyle
		if t.Side == market.SideSell {
			sideStyle = styles.SellStyle
		}
		line := fmt.Sprintf("%s %s %s",
			styles.TimeStyle.Render(t.Time.Format("15:04:05")),
			sideStyle.Render(fmt.Sprintf("%10s", styles.FormatPrice(t.Price))),
			styles.SizeStyle.Render(fmt.Sprintf("%4d", t.Amount)),
		)
		content.WriteString(line)
		content.WriteString("\n")
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	name := "—"
	if p.asset.ID != "" {
		name = p.asset.Label()
	}
	title := styles.RenderTitle(fmt.Sprintf("📊 Стакан - %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// depthRow renders one level with a background bar proportional to its
// cumulative total.
func (p *OrderbookPanel) depthRow(e orderbook.Entry, width int, text lipgloss.Style, bar lipgloss.Color) string {
	row := fmt.Sprintf("%10s %6d %6d", styles.FormatPrice(e.Price), e.Amount, e.Total)
	if w := len(row); w < width {
		row += strings.Repeat(" ", width-w)
	}

	filled := int(p.book.DepthRatio(e) * float64(width))
	if filled > len(row) {
		filled = len(row)
	}
	return text.Background(bar).Render(row[:filled]) + text.Render(row[filled:])
}

// SetFocus sets the focus state of the panel.
func (p *OrderbookPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *OrderbookPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetData replaces the displayed asset, book and trades. Trades are newest
// first.
func (p *OrderbookPanel) SetData(asset market.Asset, current float64, book orderbook.Book, trades []orderbook.Trade) {
	p.asset = asset
	p.current = current
	p.book = book
	p.trades = trades
}

// Asset returns the displayed asset.
func (p *OrderbookPanel) Asset() market.Asset {
	return p.asset
}
