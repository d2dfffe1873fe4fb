package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/tui/styles"
)

// CollectionPanel lists owned cards and offers chests and battles.
type CollectionPanel struct {
	cards  []inventory.Instance
	assets map[market.AssetID]session.AssetSnapshot
	table  *rarity.Table
	total  decimal.Decimal

	chestPrices map[rarity.ChestTier]decimal.Decimal

	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewCollectionPanel creates a new collection panel. chestPrices labels the
// chest keys and may be nil.
func NewCollectionPanel(chestPrices map[rarity.ChestTier]decimal.Decimal) *CollectionPanel {
	return &CollectionPanel{
		assets:      make(map[market.AssetID]session.AssetSnapshot),
		chestPrices: chestPrices,
	}
}

// Init initializes the panel.
func (p *CollectionPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel. "b" battles the card under the
// cursor; 1-3 open a chest.
func (p *CollectionPanel) Update(msg tea.Msg) (*CollectionPanel, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}

	switch {
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("up", "k"))):
		if p.selectedIndex > 0 {
			p.selectedIndex--
			if p.selectedIndex < p.scrollOffset {
				p.scrollOffset = p.selectedIndex
			}
		}
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("down", "j"))):
		if p.selectedIndex < len(p.cards)-1 {
			p.selectedIndex++
			visible := p.visibleRows()
			if p.selectedIndex >= p.scrollOffset+visible {
				p.scrollOffset = p.selectedIndex - visible + 1
			}
		}
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("b", "enter"))):
		if inst, ok := p.SelectedCard(); ok {
			return p, func() tea.Msg { return BattleMsg{InstanceID: inst.ID} }
		}
	case key.Matches(msgKey, key.NewBinding(key.WithKeys("1", "2", "3"))):
		chest := rarity.ChestTiers[int(msgKey.String()[0]-'1')]
		return p, func() tea.Msg { return ChestMsg{Chest: chest} }
	}
	return p, nil
}

func (p *CollectionPanel) visibleRows() int {
	v := p.height - 8
	if v < 1 {
		v = 1
	}
	return v
}

// View renders the panel.
func (p *CollectionPanel) View() string {
	var content strings.Builder

	content.WriteString(styles.LabelStyle.Render("Стоимость коллекции "))
	content.WriteString(styles.BalanceStyle.Render(styles.FormatMoney(p.total)))
	content.WriteString("\n")
	content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-18s %-10s %11s %10s %5s", "Мем", "Редкость", "Серия", "Цена", "Шанс")))
	content.WriteString("\n")

	if len(p.cards) == 0 {
		content.WriteString(styles.MutedStyle.Render("Коллекция пуста"))
		content.WriteString("\n")
	}

	visible := p.visibleRows()
	end := p.scrollOffset + visible
	if end > len(p.cards) {
		end = len(p.cards)
	}
	for i := p.scrollOffset; i < end; i++ {
		content.WriteString(p.renderCard(i))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(p.renderChests())

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("🎴 Коллекция (%d)", len(p.cards)), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *CollectionPanel) renderCard(i int) string {
	inst := p.cards[i]
	a := p.assets[inst.Asset]

	name := truncate(a.Asset.Label(), 18)
	if name == "" {
		name = string(inst.Asset)
	}

	tierName, tierColor, serial := inst.Tier.String(), "", fmt.Sprintf("#%d", inst.Serial)
	mult := 1.0
	if p.table != nil {
		spec := p.table.Spec(inst.Tier)
		tierName, tierColor, mult = spec.Name, spec.Color, spec.Multiplier
		serial = fmt.Sprintf("#%d/%d", inst.Serial, spec.MaxSerial)
	}
	value := decimal.NewFromFloat(a.Price.Current).Mul(decimal.NewFromFloat(mult))

	row := fmt.Sprintf("%-18s %s %11s %10s %4.0f%%",
		name,
		styles.Colored(fmt.Sprintf("%-10s", tierName), tierColor),
		serial,
		value.StringFixed(2),
		session.WinProbability(mult)*100,
	)
	if i == p.selectedIndex && p.focused {
		return styles.SelectedRowStyle.Render(row)
	}
	return row
}

func (p *CollectionPanel) renderChests() string {
	parts := make([]string, 0, len(rarity.ChestTiers))
	for i, c := range rarity.ChestTiers {
		label := fmt.Sprintf("[%d] %s", i+1, chestLabel(c))
		if price, ok := p.chestPrices[c]; ok {
			if price.IsZero() {
				label += " бесплатно"
			} else {
				label += " " + styles.FormatMoney(price)
			}
		}
		parts = append(parts, label)
	}
	return styles.LabelStyle.Render("Сундуки: ") + strings.Join(parts, "  ") +
		"\n" + styles.MutedStyle.Render("[b] битва выбранной картой")
}

func chestLabel(c rarity.ChestTier) string {
	switch c {
	case rarity.ChestFree:
		return "Бесплатный"
	case rarity.ChestPremium:
		return "Премиум"
	case rarity.ChestLegendary:
		return "Легендарный"
	default:
		return c.String()
	}
}

// SetFocus sets the focus state of the panel.
func (p *CollectionPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *CollectionPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSnapshot replaces the listed cards and their prices.
func (p *CollectionPanel) SetSnapshot(snap session.Snapshot) {
	p.cards = snap.Collection
	p.table = snap.Table
	p.total = snap.CollectionValue
	for _, a := range snap.Assets {
		p.assets[a.Asset.ID] = a
	}
	if p.selectedIndex >= len(p.cards) {
		p.selectedIndex = len(p.cards) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// SelectedCard returns the card under the cursor.
func (p *CollectionPanel) SelectedCard() (inventory.Instance, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.cards) {
		return p.cards[p.selectedIndex], true
	}
	return inventory.Instance{}, false
}

// BattleMsg asks to stake a card in a battle.
type BattleMsg struct {
	InstanceID string
}

// ChestMsg asks to open a chest.
type ChestMsg struct {
	Chest rarity.ChestTier
}
