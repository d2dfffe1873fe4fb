package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/tui/styles"
)

// OrderInputField represents the currently focused input field.
type OrderInputField int

const (
	FieldSide OrderInputField = iota
	FieldType
	FieldPrice
	FieldQuantity
	FieldQuick
	FieldSubmit
)

// QuickPercents are the quick-buy sizes offered for market buys.
var QuickPercents = []int{25, 50, 75, 100}

// OrderInputPanel edits an order for the selected asset.
type OrderInputPanel struct {
	asset         market.Asset
	priceInput    textinput.Model
	quantityInput textinput.Model

	sideOptions []market.Side
	sideIndex   int

	typeOptions []market.OrderKind
	typeIndex   int

	quickIndex int

	quote    session.Quote
	hasQuote bool

	currentField OrderInputField

	focused bool
	width   int
	height  int
}

// NewOrderInputPanel creates a new order input panel.
func NewOrderInputPanel() *OrderInputPanel {
	priceInput := textinput.New()
	priceInput.Placeholder = "Цена"
	priceInput.Width = 10
	priceInput.CharLimit = 12

	quantityInput := textinput.New()
	quantityInput.Placeholder = "Кол-во"
	quantityInput.Width = 10
	quantityInput.CharLimit = 6
	quantityInput.SetValue("1")

	return &OrderInputPanel{
		priceInput:    priceInput,
		quantityInput: quantityInput,
		sideOptions:   []market.Side{market.SideBuy, market.SideSell},
		typeOptions:   []market.OrderKind{market.OrderKindMarket, market.OrderKindLimit},
		currentField:  FieldSide,
	}
}

// Init initializes the panel.
func (p *OrderInputPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *OrderInputPanel) Update(msg tea.Msg) (*OrderInputPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	if msgKey, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msgKey, key.NewBinding(key.WithKeys("down"))):
			p.nextField()
			return p, nil

		case key.Matches(msgKey, key.NewBinding(key.WithKeys("up"))):
			p.prevField()
			return p, nil

		case key.Matches(msgKey, key.NewBinding(key.WithKeys("enter"))):
			switch p.currentField {
			case FieldSubmit:
				return p, p.submitOrder()
			case FieldQuick:
				return p, p.quickSize()
			}
			p.nextField()
			return p, nil

		case key.Matches(msgKey, key.NewBinding(key.WithKeys("left"))):
			if p.cycleOption(-1) {
				return p, nil
			}

		case key.Matches(msgKey, key.NewBinding(key.WithKeys("right"))):
			if p.cycleOption(1) {
				return p, nil
			}
		}
	}

	switch p.currentField {
	case FieldPrice:
		p.priceInput, cmd = p.priceInput.Update(msg)
	case FieldQuantity:
		p.quantityInput, cmd = p.quantityInput.Update(msg)
	}

	return p, cmd
}

// cycleOption moves the option under the cursor and reports whether the
// current field is an option field.
func (p *OrderInputPanel) cycleOption(delta int) bool {
	step := func(i, n int) int {
		i += delta
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	switch p.currentField {
	case FieldSide:
		p.sideIndex = step(p.sideIndex, len(p.sideOptions))
	case FieldType:
		p.typeIndex = step(p.typeIndex, len(p.typeOptions))
	case FieldQuick:
		p.quickIndex = step(p.quickIndex, len(QuickPercents))
	default:
		return false
	}
	return true
}

// View renders the panel.
func (p *OrderInputPanel) View() string {
	var content strings.Builder

	name := "—"
	if p.asset.ID != "" {
		name = p.asset.Label()
	}
	content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-8s", "Мем")) + name)
	content.WriteString("\n")

	content.WriteString(p.renderField("Сторона", FieldSide, p.renderSideField()))
	content.WriteString("\n")

	content.WriteString(p.renderField("Тип", FieldType, p.renderTypeField()))
	content.WriteString("\n")

	if p.isLimit() {
		content.WriteString(p.renderField("Цена", FieldPrice, p.renderInput(FieldPrice, &p.priceInput)))
		content.WriteString("\n")
	}

	content.WriteString(p.renderField("Кол-во", FieldQuantity, p.renderInput(FieldQuantity, &p.quantityInput)))
	content.WriteString("\n")

	content.WriteString(p.renderField("Быстро", FieldQuick, p.renderQuickField()))
	content.WriteString("\n\n")

	submitStyle := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		submitStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	label := "  [Купить]  "
	if p.side() == market.SideSell {
		label = "  [Продать]  "
	}
	content.WriteString(submitStyle.Render(label))

	content.WriteString("\n\n")
	content.WriteString(p.renderOrderSummary())

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📝 Заявка", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *OrderInputPanel) renderField(label string, field OrderInputField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + inputView
}

func (p *OrderInputPanel) renderInput(field OrderInputField, in *textinput.Model) string {
	style := styles.InputStyle
	if p.currentField == field && p.focused {
		style = styles.FocusedInputStyle
	}
	return style.Render(in.View())
}

func (p *OrderInputPanel) renderOptions(labels []string, selected int, field OrderInputField, colorize func(i int, s lipgloss.Style) lipgloss.Style) string {
	items := make([]string, len(labels))
	for i, l := range labels {
		style := styles.OptionStyle
		if i == selected {
			if p.currentField == field && p.focused {
				style = styles.OptionSelectedStyle
			} else {
				style = styles.OptionStyle.Bold(true)
			}
			if colorize != nil {
				style = colorize(i, style)
			}
		}
		items[i] = style.Render(l)
	}
	return strings.Join(items, " | ")
}

func (p *OrderInputPanel) renderSideField() string {
	labels := []string{"КУПИТЬ", "ПРОДАТЬ"}
	return p.renderOptions(labels, p.sideIndex, FieldSide, func(i int, s lipgloss.Style) lipgloss.Style {
		if p.sideOptions[i] == market.SideBuy {
			return s.Foreground(styles.BuyColor)
		}
		return s.Foreground(styles.SellColor)
	})
}

func (p *OrderInputPanel) renderTypeField() string {
	return p.renderOptions([]string{"РЫНОК", "ЛИМИТ"}, p.typeIndex, FieldType, nil)
}

func (p *OrderInputPanel) renderQuickField() string {
	labels := make([]string, len(QuickPercents))
	for i, pct := range QuickPercents {
		labels[i] = fmt.Sprintf("%d%%", pct)
	}
	return p.renderOptions(labels, p.quickIndex, FieldQuick, nil)
}

func (p *OrderInputPanel) renderOrderSummary() string {
	if !p.hasQuote {
		return styles.MutedStyle.Render("Итого: —")
	}
	var b strings.Builder
	b.WriteString(styles.HeaderStyle.Render("Итого: "))
	b.WriteString(styles.FormatMoney(p.quote.Total))
	if p.side() == market.SideSell {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  комиссия %s", styles.FormatMoney(p.quote.Fee))))
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("Получите: "))
		b.WriteString(styles.BuyStyle.Render(styles.FormatMoney(p.quote.Net)))
	}
	return b.String()
}

func (p *OrderInputPanel) side() market.Side { return p.sideOptions[p.sideIndex] }

func (p *OrderInputPanel) isLimit() bool {
	return p.typeOptions[p.typeIndex] == market.OrderKindLimit
}

func (p *OrderInputPanel) setField(f OrderInputField) {
	p.currentField = f
	p.priceInput.Blur()
	p.quantityInput.Blur()
	switch f {
	case FieldPrice:
		p.priceInput.Focus()
	case FieldQuantity:
		p.quantityInput.Focus()
	}
}

func (p *OrderInputPanel) nextField() {
	next := (p.currentField + 1) % (FieldSubmit + 1)
	if next == FieldPrice && !p.isLimit() {
		next = FieldQuantity
	}
	p.setField(next)
}

func (p *OrderInputPanel) prevField() {
	prev := p.currentField - 1
	if prev < 0 {
		prev = FieldSubmit
	}
	if prev == FieldPrice && !p.isLimit() {
		prev = FieldType
	}
	p.setField(prev)
}

// Draft returns the order described by the inputs, if they parse.
func (p *OrderInputPanel) Draft() (session.OrderRequest, bool) {
	if p.asset.ID == "" {
		return session.OrderRequest{}, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(p.quantityInput.Value()))
	if err != nil || qty <= 0 {
		return session.OrderRequest{}, false
	}
	req := session.OrderRequest{
		Asset:  p.asset.ID,
		Side:   p.side(),
		Kind:   p.typeOptions[p.typeIndex],
		Amount: qty,
	}
	if p.isLimit() {
		price, err := strconv.ParseFloat(strings.TrimSpace(p.priceInput.Value()), 64)
		if err != nil || price <= 0 {
			return session.OrderRequest{}, false
		}
		req.LimitPrice = price
	}
	return req, true
}

func (p *OrderInputPanel) submitOrder() tea.Cmd {
	req, ok := p.Draft()
	if !ok {
		return func() tea.Msg { return StatusMsg{Text: "Проверьте цену и количество", Error: true} }
	}
	return func() tea.Msg { return OrderSubmitMsg{Request: req} }
}

func (p *OrderInputPanel) quickSize() tea.Cmd {
	if p.asset.ID == "" {
		return nil
	}
	msg := QuickSizeMsg{Asset: p.asset.ID, Percent: QuickPercents[p.quickIndex]}
	return func() tea.Msg { return msg }
}

// SetFocus sets the focus state of the panel.
func (p *OrderInputPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		p.setField(p.currentField)
		return
	}
	p.priceInput.Blur()
	p.quantityInput.Blur()
}

// SetSize sets the panel dimensions.
func (p *OrderInputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAsset switches the order to another asset and prefills the limit
// price with its live price.
func (p *OrderInputPanel) SetAsset(asset market.Asset, current float64) {
	if asset.ID == p.asset.ID {
		return
	}
	p.asset = asset
	p.priceInput.SetValue(styles.FormatPrice(current))
	p.hasQuote = false
}

// SetQuantity overwrites the quantity input.
func (p *OrderInputPanel) SetQuantity(n int) {
	p.quantityInput.SetValue(strconv.Itoa(n))
}

// SetQuote sets the preview shown under the submit button. ok false clears
// it.
func (p *OrderInputPanel) SetQuote(q session.Quote, ok bool) {
	p.quote = q
	p.hasQuote = ok
}

// OrderSubmitMsg is sent when an order is submitted.
type OrderSubmitMsg struct {
	Request session.OrderRequest
}

// QuickSizeMsg asks for the quantity affordable at Percent of the balance.
type QuickSizeMsg struct {
	Asset   market.AssetID
	Percent int
}

// StatusMsg sets the status bar text.
type StatusMsg struct {
	Text  string
	Error bool
}
