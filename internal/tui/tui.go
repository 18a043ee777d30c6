// Package tui renders a room's redacted state in the terminal and
// submits actions for one player.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"holdemroom/internal/client"
	"holdemroom/internal/deck"
	"holdemroom/internal/game"
)

type stateMsg game.View

type streamClosedMsg struct{}

type errMsg struct{ err error }

type actionOKMsg struct{}

// Model is the Bubble Tea model for the table view.
type Model struct {
	client   *client.Client
	roomCode string
	playerID string

	view  game.View
	views <-chan game.View

	amountInput textinput.Model
	entering    bool
	status      string
	quitting    bool
}

// New creates a model showing the given initial view and following the
// subscription channel.
func New(c *client.Client, roomCode, playerID string, initial game.View, views <-chan game.View) Model {
	ti := textinput.New()
	ti.Placeholder = "amount"
	ti.Prompt = "bet/raise > "
	ti.CharLimit = 10
	ti.Width = 20

	return Model{
		client:      c,
		roomCode:    roomCode,
		playerID:    playerID,
		view:        initial,
		views:       views,
		amountInput: ti,
	}
}

// Init starts listening for pushed state.
func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		view, ok := <-m.views
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(view)
	}
}

func (m Model) act(actionType string, amount int) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Act(context.Background(), m.roomCode, m.playerID, actionType, amount); err != nil {
			return errMsg{err}
		}
		return actionOKMsg{}
	}
}

// Update handles pushed state and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.view = game.View(msg)
		return m, m.waitForState()

	case streamClosedMsg:
		m.status = "Connection to server lost."
		m.quitting = true
		return m, tea.Quit

	case errMsg:
		m.status = msg.err.Error()
		return m, nil

	case actionOKMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if m.entering {
			switch msg.String() {
			case "enter":
				value := strings.TrimSpace(m.amountInput.Value())
				m.entering = false
				m.amountInput.SetValue("")
				m.amountInput.Blur()
				amount, err := strconv.Atoi(value)
				if err != nil {
					m.status = fmt.Sprintf("invalid amount %q", value)
					return m, nil
				}
				return m, m.act("betRaise", amount)
			case "esc":
				m.entering = false
				m.amountInput.SetValue("")
				m.amountInput.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.amountInput, cmd = m.amountInput.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			_ = m.client.Leave(context.Background(), m.roomCode, m.playerID)
			return m, tea.Quit
		case "s":
			return m, m.act("start", 0)
		case "f":
			return m, m.act("fold", 0)
		case "c":
			return m, m.act("checkCall", 0)
		case "b":
			m.entering = true
			m.amountInput.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

// View renders the table.
func (m Model) View() string {
	if m.quitting {
		if m.status != "" {
			return m.status + "\n"
		}
		return ""
	}

	var b strings.Builder

	header := fmt.Sprintf("Room %s · %s · pot %d · bet %d", m.view.Code, m.view.Stage, m.view.Pot, m.view.CurrentBet)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if len(m.view.Community) > 0 {
		b.WriteString("Board: " + renderCards(m.view.Community) + "\n\n")
	}

	for _, p := range m.view.Players {
		line := fmt.Sprintf("%-20s  stack %5d  bet %4d  %s", p.Name, p.Stack, p.Bet, renderCards(p.Cards))
		if p.BestHand != nil {
			line += "  " + p.BestHand.Name
		}
		if p.IsHost {
			line += "  (host)"
		}
		switch {
		case p.Folded:
			line = foldedStyle.Render(line)
		case p.ID == m.view.CurrentPlayerID:
			line = turnStyle.Render("▶ " + line)
		default:
			line = playerStyle.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + messageStyle.Render(m.view.Message) + "\n")

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status) + "\n")
	}

	if m.entering {
		b.WriteString("\n" + m.amountInput.View() + "\n")
	} else {
		b.WriteString("\n" + helpStyle.Render("s start · c check/call · b bet/raise · f fold · q quit") + "\n")
	}

	return b.String()
}

func renderCards(labels []string) string {
	rendered := make([]string, 0, len(labels))
	for _, label := range labels {
		card, err := deck.Parse(label)
		switch {
		case err != nil:
			rendered = append(rendered, hiddenCardStyle.Render(label))
		case card.IsRed():
			rendered = append(rendered, redCardStyle.Render(label))
		default:
			rendered = append(rendered, blackCardStyle.Render(label))
		}
	}
	return strings.Join(rendered, " ")
}
