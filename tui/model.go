package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	activityservice "github.com/zappabad/memex/internal/activity/service"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/internal/session/runner"
	"github.com/zappabad/memex/tui/panels"
	"github.com/zappabad/memex/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarket PanelFocus = iota
	FocusOrderbook
	FocusChart
	FocusCollection
	FocusActivity
	FocusOrderInput

	numPanels
)

const callTimeout = 2 * time.Second

// Options configures the model.
type Options struct {
	// DisplayName is shown in the status bar.
	DisplayName string
	// ChestPrices labels the chest keys.
	ChestPrices map[rarity.ChestTier]decimal.Decimal
	// Refresh is the snapshot polling interval.
	Refresh time.Duration
}

// Model is the main TUI application model.
type Model struct {
	runner   *runner.Runner
	activity *activityservice.Service
	opts     Options

	snap session.Snapshot

	marketPanel     *panels.MarketOverviewPanel
	orderbookPanel  *panels.OrderbookPanel
	chartPanel      *panels.CandlestickPanel
	collectionPanel *panels.CollectionPanel
	activityPanel   *panels.ActivityPanel
	orderInputPanel *panels.OrderInputPanel

	focusedPanel PanelFocus

	width  int
	height int

	statusMsg string
	statusErr bool
	ready     bool
}

// NewModel creates a new TUI model around a running session.
func NewModel(r *runner.Runner, act *activityservice.Service, opts Options) *Model {
	if opts.Refresh <= 0 {
		opts.Refresh = 250 * time.Millisecond
	}
	return &Model{
		runner:          r,
		activity:        act,
		opts:            opts,
		marketPanel:     panels.NewMarketOverviewPanel(),
		orderbookPanel:  panels.NewOrderbookPanel(),
		chartPanel:      panels.NewCandlestickPanel(),
		collectionPanel: panels.NewCollectionPanel(opts.ChestPrices),
		activityPanel:   panels.NewActivityPanel(),
		orderInputPanel: panels.NewOrderInputPanel(),
		focusedPanel:    FocusMarket,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.activityPanel.SetEntries(m.activity.Latest(50))
	return tea.Batch(
		m.orderInputPanel.Init(),
		m.refresh(),
		m.listenActivity(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.focusedPanel != FocusOrderInput {
				return m, tea.Quit
			}
		case "tab":
			m.focusedPanel = (m.focusedPanel + 1) % numPanels
			return m, nil
		case "shift+tab":
			m.focusedPanel = (m.focusedPanel + numPanels - 1) % numPanels
			return m, nil
		case "f1", "f2", "f3", "f4", "f5", "f6":
			m.focusedPanel = PanelFocus(msg.String()[1] - '1')
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case snapshotMsg:
		if msg.err == nil {
			m.applySnapshot(msg.snap)
			m.orderInputPanel.SetQuote(msg.quote, msg.hasQuote)
		}

	case tickMsg:
		cmds = append(cmds, m.refresh(), m.tickRefresh())

	case panels.ActivityMsg:
		m.activityPanel.AddEntry(msg.Entry)
		cmds = append(cmds, m.listenActivity())

	case panels.AssetSelectedMsg:
		cmds = append(cmds, m.selectAsset(msg.Asset.ID))

	case panels.OrderSubmitMsg:
		cmds = append(cmds, m.placeOrder(msg.Request))

	case panels.QuickSizeMsg:
		cmds = append(cmds, m.quickSize(msg))

	case quickSizeResultMsg:
		m.orderInputPanel.SetQuantity(msg.amount)
		cmds = append(cmds, m.refresh())

	case panels.ChestMsg:
		cmds = append(cmds, m.openChest(msg.Chest))

	case panels.BattleMsg:
		cmds = append(cmds, m.battle(msg.InstanceID))

	case selectedMsg:
		cmds = append(cmds, m.refresh())

	case panels.StatusMsg:
		m.statusMsg, m.statusErr = msg.Text, msg.Error

	case resultMsg:
		m.statusMsg, m.statusErr = msg.text, msg.err
		cmds = append(cmds, m.refresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusMarket:
		m.marketPanel, cmd = m.marketPanel.Update(msg)
	case FocusOrderbook:
		m.orderbookPanel, cmd = m.orderbookPanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusCollection:
		m.collectionPanel, cmd = m.collectionPanel.Update(msg)
	case FocusActivity:
		m.activityPanel, cmd = m.activityPanel.Update(msg)
	case FocusOrderInput:
		m.orderInputPanel, cmd = m.orderInputPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) applySnapshot(snap session.Snapshot) {
	m.snap = snap
	m.marketPanel.SetSnapshot(snap)
	m.collectionPanel.SetSnapshot(snap)

	a, ok := snap.Asset(snap.Selected)
	if !ok {
		return
	}
	m.orderbookPanel.SetData(a.Asset, a.Price.Current, a.Book, a.Trades)
	m.chartPanel.SetCandles(a.Asset, a.Candles)
	m.orderInputPanel.SetAsset(a.Asset, a.Price.Current)
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Загрузка..."
	}

	m.marketPanel.SetFocus(m.focusedPanel == FocusMarket)
	m.orderbookPanel.SetFocus(m.focusedPanel == FocusOrderbook)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.collectionPanel.SetFocus(m.focusedPanel == FocusCollection)
	m.activityPanel.SetFocus(m.focusedPanel == FocusActivity)
	m.orderInputPanel.SetFocus(m.focusedPanel == FocusOrderInput)

	// Layout:
	// ┌──────────┬───────────┬───────────────────┐
	// │  Market  │ Orderbook │       Chart       │
	// ├──────────┴─┬─────────┴──┬────────────────┤
	// │ Collection │  Activity  │  Order Input   │
	// └────────────┴────────────┴────────────────┘

	leftWidth := m.width / 4
	middleWidth := m.width / 4
	rightWidth := m.width - leftWidth - middleWidth

	topHeight := (m.height - 3) * 3 / 5
	bottomHeight := m.height - topHeight - 3

	m.marketPanel.SetSize(leftWidth, topHeight)
	m.orderbookPanel.SetSize(middleWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.marketPanel.View(),
		m.orderbookPanel.View(),
		m.chartPanel.View(),
	)

	collectionWidth := m.width * 2 / 5
	activityWidth := m.width / 3
	orderWidth := m.width - collectionWidth - activityWidth

	m.collectionPanel.SetSize(collectionWidth, bottomHeight)
	m.activityPanel.SetSize(activityWidth, bottomHeight)
	m.orderInputPanel.SetSize(orderWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.collectionPanel.View(),
		m.activityPanel.View(),
		m.orderInputPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.StatusBarKeyStyle.Render("F1-F6")+styles.StatusBarDescStyle.Render(" панели"),
		" │ ",
		styles.StatusBarKeyStyle.Render("Tab")+styles.StatusBarDescStyle.Render(" далее"),
		" │ ",
		styles.StatusBarKeyStyle.Render("q")+styles.StatusBarDescStyle.Render(" выход"),
	)

	player := m.opts.DisplayName
	if player != "" {
		player += " "
	}
	balance := styles.BalanceStyle.Render(player + styles.FormatMoney(m.snap.Balance))

	status := ""
	if m.statusMsg != "" {
		style := styles.BuyStyle
		if m.statusErr {
			style = styles.SellStyle
		}
		status = " │ " + style.Render(m.statusMsg)
	}

	return styles.StatusBarStyle.Width(m.width).Render(balance + " │ " + help + status)
}

func (m *Model) refresh() tea.Cmd {
	draft, hasDraft := m.orderInputPanel.Draft()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		snap, err := m.runner.Snapshot(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		out := snapshotMsg{snap: snap}
		if hasDraft {
			if q, err := m.runner.Quote(ctx, draft); err == nil {
				out.quote, out.hasQuote = q, true
			}
		}
		return out
	}
}

func (m *Model) selectAsset(id market.AssetID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		if err := m.runner.SelectAsset(ctx, id); err != nil {
			return resultMsg{text: "❌ " + describeError(err), err: true}
		}
		return selectedMsg{}
	}
}

func (m *Model) placeOrder(req session.OrderRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		res, err := m.runner.PlaceOrder(ctx, req)
		if err != nil {
			return resultMsg{text: "❌ " + describeError(err), err: true}
		}
		verb := "Куплено"
		if res.Side == market.SideSell {
			verb = "Продано"
		}
		return resultMsg{text: fmt.Sprintf("✓ %s %d по %s", verb, res.Amount, res.Price.StringFixed(2))}
	}
}

func (m *Model) quickSize(msg panels.QuickSizeMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		n, err := m.runner.MaxAffordable(ctx, msg.Asset, msg.Percent)
		if err != nil {
			return resultMsg{text: "❌ " + describeError(err), err: true}
		}
		return quickSizeResultMsg{amount: n}
	}
}

func (m *Model) openChest(chest rarity.ChestTier) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		res, err := m.runner.OpenChest(ctx, chest)
		if err != nil {
			return resultMsg{text: "❌ " + describeError(err), err: true}
		}
		return resultMsg{text: fmt.Sprintf("🎁 Выпало: %s #%d", res.Instance.Tier, res.Instance.Serial)}
	}
}

func (m *Model) battle(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		out, err := m.runner.ResolveBattle(ctx, id)
		if err != nil {
			return resultMsg{text: "❌ " + describeError(err), err: true}
		}
		if out.Won {
			return resultMsg{text: fmt.Sprintf("⚔️ Победа! +%s", out.Prize.StringFixed(2))}
		}
		return resultMsg{text: "💀 Поражение, карта сгорела", err: true}
	}
}

func (m *Model) listenActivity() tea.Cmd {
	events := m.activity.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return panels.ActivityMsg{Entry: ev.Entry}
	}
}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

var reasonText = map[string]string{
	"insufficient_funds":     "Недостаточно средств",
	"insufficient_inventory": "Недостаточно карт",
	"invalid_order":          "Неверная заявка",
	"limit_not_marketable":   "Лимитная цена не достигнута",
	"not_found":              "Карта не найдена",
	"unknown_asset":          "Неизвестный мем",
	"unknown_chest":          "Неизвестный сундук",
	"edition_exhausted":      "Тираж исчерпан",
}

func describeError(err error) string {
	if text, ok := reasonText[session.Reason(err)]; ok {
		return text
	}
	return err.Error()
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

type snapshotMsg struct {
	snap     session.Snapshot
	quote    session.Quote
	hasQuote bool
	err      error
}

type selectedMsg struct{}

type quickSizeResultMsg struct {
	amount int
}

// resultMsg is sent after a player action completes.
type resultMsg struct {
	text string
	err  bool
}
