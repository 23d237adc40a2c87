package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lawtui/config"
)

// PassphraseModal prompts for the SSH key passphrase before the main UI
// starts, when the stored session is encrypted with a protected key.
type PassphraseModal struct {
	keyPath   string
	input     textinput.Model
	err       string
	width     int
	height    int
	cancelled bool
}

func NewPassphraseModal(keyPath string) PassphraseModal {
	input := textinput.New()
	input.Placeholder = "Enter passphrase"
	input.Width = 50
	input.CharLimit = 200
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Focus()

	return PassphraseModal{
		keyPath: keyPath,
		input:   input,
	}
}

func (m PassphraseModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m PassphraseModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if strings.TrimSpace(m.input.Value()) == "" {
				m.err = "Passphrase cannot be empty."
				return m, nil
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PassphraseModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	modalWidth := 70
	if m.width < modalWidth+10 {
		modalWidth = m.width - 10
		if modalWidth < 10 {
			modalWidth = 10
		}
	}

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
	messageLines = append(messageLines, centerTextLine("The SSH key is encrypted with a passphrase.", modalWidth))
	messageLines = append(messageLines, centerTextLine(fmt.Sprintf("Key: %s", m.keyPath), modalWidth))
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	inputStyle := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)
	messageLines = append(messageLines, inputStyle.Render("  "+m.input.View()))

	if m.err != "" {
		messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
		errStyle := lipgloss.NewStyle().Foreground(dangerColor).Width(modalWidth).Align(lipgloss.Center)
		messageLines = append(messageLines, errStyle.Render(m.err))
	}
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	return RenderThreeSectionModal(
		"SSH Key Passphrase Required",
		messageLines,
		"Enter Confirm  Esc Cancel",
		ModalTypeWarning,
		modalWidth,
		m.width,
		m.height,
	)
}

// GetPassphrase returns the entered passphrase (empty if cancelled)
func (m PassphraseModal) GetPassphrase() string {
	if m.cancelled {
		return ""
	}
	return m.input.Value()
}

// IsCancelled returns true if user pressed Esc
func (m PassphraseModal) IsCancelled() bool {
	return m.cancelled
}

// LoadCredentialsWithPassphrase sets the passphrase on the credential
// store and retries loading the stored session. Returns an error when the
// passphrase is wrong.
func LoadCredentialsWithPassphrase(store *config.CredentialStore, dataDir, passphrase string) error {
	if store == nil {
		return fmt.Errorf("no credential store configured")
	}
	store.SetPassphrase(passphrase)
	return store.Load(dataDir)
}
