package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/malonaz/carscout/cli/chat/session"
	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/configuration"
	"github.com/malonaz/carscout/internal/conversation"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/history"
)

var log = debug.GetLogger()

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the car buying assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := agent.NewClient(config.ServiceURL, config.Timeout())
			controller := conversation.New(client, conversation.WithFollowUpDelay(config.Chat.FollowUpDelay()))

			clipboardReady := true
			if err := clipboard.Init(); err != nil {
				log.Warn("clipboard unavailable", "error", err)
				clipboardReady = false
			}

			m, err := session.New(ctx, config, controller, history.New(config.Chat.HistoryFile), clipboardReady)
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithMouseCellMotion(),
				tea.WithReportFocus(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}
			return nil
		},
	}
	return cmd
}
