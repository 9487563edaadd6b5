package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ubhkeys/Mindcalls1/internal/ui"
)

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyTab, KeyShiftTab:
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			m.codeInput.Focus()
		} else {
			m.loginFocus = 0
			m.codeInput.Blur()
			m.emailInput.Focus()
		}
		return m, nil

	case KeyEnter:
		if m.loginFocus == 0 {
			// Move on to the access code first.
			m.loginFocus = 1
			m.emailInput.Blur()
			m.codeInput.Focus()
			return m, nil
		}
		return m.submitLogin()

	case KeyEsc:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.codeInput, cmd = m.codeInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.loginBusy {
		return m, nil
	}
	email := strings.TrimSpace(m.emailInput.Value())
	code := strings.TrimSpace(m.codeInput.Value())
	if email == "" || code == "" {
		m.loginError = "Email and access code are required."
		return m, nil
	}

	m.loginBusy = true
	m.loginError = ""
	return m, loginCmd(m.client, m.sessions, email, code)
}

func (m Model) viewLogin() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + ui.TitleStyle.Render("MINDCALLS") + ui.DimStyle.Render("  interview analytics") + "\n\n")

	b.WriteString("  " + ui.StatLabelStyle.Render("Email") + "\n")
	b.WriteString("  " + m.emailInput.View() + "\n\n")
	b.WriteString("  " + ui.StatLabelStyle.Render("Access code") + "\n")
	b.WriteString("  " + m.codeInput.View() + "\n\n")

	if m.loginBusy {
		b.WriteString("  " + ui.DimStyle.Render("Signing in...") + "\n")
	} else if m.loginError != "" {
		b.WriteString("  " + ui.ErrorTextStyle.Render(m.loginError) + "\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + ui.FooterKeyStyle.Render("Tab") + ui.FooterDescStyle.Render(" Switch field") +
		"  " + ui.FooterKeyStyle.Render("Enter") + ui.FooterDescStyle.Render(" Sign in") +
		"  " + ui.FooterKeyStyle.Render("Esc") + ui.FooterDescStyle.Render(" Quit"))

	return b.String()
}
