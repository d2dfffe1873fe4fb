package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/memex/internal/activity"
	"github.com/zappabad/memex/tui/styles"
)

// ActivityPanel shows order confirmations, chest drops, battle results and
// rejections, newest first.
type ActivityPanel struct {
	entries       []activity.Entry
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
	maxItems      int
}

// NewActivityPanel creates a new activity panel.
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{
		maxItems: 50,
	}
}

// Init initializes the panel.
func (p *ActivityPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ActivityPanel) Update(msg tea.Msg) (*ActivityPanel, tea.Cmd) {
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
		if p.selectedIndex < len(p.entries)-1 {
			p.selectedIndex++
			visible := p.visibleItems()
			if p.selectedIndex >= p.scrollOffset+visible {
				p.scrollOffset = p.selectedIndex - visible + 1
			}
		}
	}
	return p, nil
}

func (p *ActivityPanel) visibleItems() int {
	v := p.height - 4
	if v < 1 {
		v = 1
	}
	return v
}

// View renders the panel.
func (p *ActivityPanel) View() string {
	var content strings.Builder

	if len(p.entries) == 0 {
		content.WriteString(styles.MutedStyle.Render("Пока тихо"))
	} else {
		visible := p.visibleItems()
		start := p.scrollOffset
		end := start + visible
		if end > len(p.entries) {
			end = len(p.entries)
		}

		for i := start; i < end; i++ {
			e := p.entries[i]
			text := e.Headline
			if e.Body != "" {
				text += " · " + e.Body
			}
			text = truncate(text, p.width-16)

			line := fmt.Sprintf("%s %s",
				styles.TimeStyle.Render(e.Time.Format("15:04:05")),
				styles.ActivityStyle(e.Kind).Render(text),
			)
			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.entries) > visible {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.entries))))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🔔 Активность", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *ActivityPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ActivityPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetEntries replaces the entries from a feed listing, newest first.
func (p *ActivityPanel) SetEntries(entries []activity.Entry) {
	if len(entries) > p.maxItems {
		entries = entries[:p.maxItems]
	}
	p.entries = append([]activity.Entry(nil), entries...)
	if p.selectedIndex >= len(p.entries) {
		p.selectedIndex = len(p.entries) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
}

// AddEntry prepends an entry.
func (p *ActivityPanel) AddEntry(e activity.Entry) {
	p.entries = append([]activity.Entry{e}, p.entries...)
	if len(p.entries) > p.maxItems {
		p.entries = p.entries[:p.maxItems]
	}
}

// ActivityMsg is sent when the activity service publishes an entry.
type ActivityMsg struct {
	Entry activity.Entry
}
