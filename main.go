package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lawtui/api"
	"lawtui/config"
	"lawtui/model"
	"lawtui/storage"
	"lawtui/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		showErrorModal("Configuration Error", fmt.Sprintf("Failed to load config:\n%v", err))
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	reports, err := storage.NewReportStore(cfg.DataDir())
	if err != nil {
		showErrorModal("Storage Error", fmt.Sprintf("Failed to open report store:\n%v", err))
		os.Exit(1)
	}
	defer reports.Close()

	credentials := config.NewCredentialStore(cfg.CredentialSecurity, cfg.SSHKeyPath)
	if err := credentials.Load(cfg.DataDir()); err != nil {
		if cfg.CredentialSecurity == config.SecuritySSHKey && isPassphraseError(err) {
			// Encrypted SSH key: prompt for the passphrase before the
			// main UI starts
			if !promptPassphrase(cfg, credentials) {
				os.Exit(0)
			}
		} else {
			// A broken session file should not block the app; start
			// signed out
			if config.DebugLog != nil {
				config.DebugLog.Printf("[main] Failed to load session, starting signed out: %v", err)
			}
			credentials.Clear()
		}
	}

	client := api.NewClient(cfg.ServerBaseURL())
	dataModel := model.NewModel(cfg, client, credentials, reports, Version, License)

	// `lawtui report` opens the report viewer standalone on whatever the
	// handoff slot holds
	if len(os.Args) > 1 && os.Args[1] == "report" {
		rv := ui.NewReportView(dataModel, nil, true)
		p := tea.NewProgram(rv, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	appView := ui.NewAppView(dataModel)
	p := tea.NewProgram(
		appView,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showErrorModal(title, message string) {
	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	}
}

func isPassphraseError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "passphrase") || strings.Contains(msg, "decrypt")
}

// promptPassphrase runs the passphrase modal until the session loads or
// the user gives up. Returns false when the user cancelled.
func promptPassphrase(cfg *config.Config, credentials *config.CredentialStore) bool {
	for {
		modal := ui.NewPassphraseModal(cfg.SSHKeyPath)
		p := tea.NewProgram(modal, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}

		m, ok := finalModel.(ui.PassphraseModal)
		if !ok || m.IsCancelled() {
			return false
		}

		loadErr := ui.LoadCredentialsWithPassphrase(credentials, cfg.DataDir(), m.GetPassphrase())
		if loadErr == nil {
			return true
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[main] Passphrase attempt failed: %v", loadErr)
		}
		if !errors.Is(loadErr, os.ErrPermission) && !isPassphraseError(loadErr) {
			// Not a passphrase problem: give up and start signed out
			credentials.Clear()
			return true
		}
	}
}
