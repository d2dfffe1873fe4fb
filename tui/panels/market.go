package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/tui/styles"
)

// MarketOverviewPanel lists every asset with its live price and 24h stats.
type MarketOverviewPanel struct {
	assets        []session.AssetSnapshot
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketOverviewPanel creates a new market overview panel.
func NewMarketOverviewPanel() *MarketOverviewPanel {
	return &MarketOverviewPanel{}
}

// Init initializes the panel.
func (p *MarketOverviewPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel. Moving the cursor emits an
// AssetSelectedMsg.
func (p *MarketOverviewPanel) Update(msg tea.Msg) (*MarketOverviewPanel, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}

	prev := p.selectedIndex
	switch {
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("up", "k"))):
		if p.selectedIndex > 0 {
			p.selectedIndex--
		}
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("down", "j"))):
		if p.selectedIndex < len(p.assets)-1 {
			p.selectedIndex++
		}
	}
	if p.selectedIndex == prev {
		return p, nil
	}
	asset := p.SelectedAsset()
	return p, func() tea.Msg { return AssetSelectedMsg{Asset: asset} }
}

// View renders the panel.
func (p *MarketOverviewPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-20s %10s %6s %9s", "Мем", "Цена", "Есть", "24ч")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for i, a := range p.assets {
		name := truncate(a.Asset.Label(), 20)
		row := fmt.Sprintf("%-20s %10s %6d", name, styles.FormatPrice(a.Price.Current), a.Held)
		// Render the change separately so the color survives the row style.
		change := styles.FormatChange(a.Price.Change24h)

		style := styles.RowStyle
		if i == p.selectedIndex {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row))
		content.WriteString(" " + change)
		if i < len(p.assets)-1 {
			content.WriteString("\n")
		}
	}

	if a, ok := p.selected(); ok {
		content.WriteString("\n\n")
		content.WriteString(styles.LabelStyle.Render("макс/мин 24ч "))
		content.WriteString(fmt.Sprintf("%s / %s", styles.FormatPrice(a.Price.High24h), styles.FormatPrice(a.Price.Low24h)))
		content.WriteString("\n")
		content.WriteString(styles.LabelStyle.Render("объём 24ч   "))
		content.WriteString(fmt.Sprintf("%.0f", a.Price.Volume24h))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Рынок мемов", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *MarketOverviewPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketOverviewPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSnapshot replaces the asset rows and keeps the cursor on the session's
// selected asset.
func (p *MarketOverviewPanel) SetSnapshot(snap session.Snapshot) {
	p.assets = snap.Assets
	for i, a := range p.assets {
		if a.Asset.ID == snap.Selected {
			p.selectedIndex = i
			break
		}
	}
	if p.selectedIndex >= len(p.assets) {
		p.selectedIndex = 0
	}
}

func (p *MarketOverviewPanel) selected() (session.AssetSnapshot, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.assets) {
		return p.assets[p.selectedIndex], true
	}
	return session.AssetSnapshot{}, false
}

// SelectedAsset returns the asset under the cursor.
func (p *MarketOverviewPanel) SelectedAsset() market.Asset {
	a, _ := p.selected()
	return a.Asset
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// AssetSelectedMsg is sent when the cursor moves to another asset.
type AssetSelectedMsg struct {
	Asset market.Asset
}
