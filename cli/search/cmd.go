package search

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/cli"
	"github.com/malonaz/carscout/internal/configuration"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/markdown"
	"github.com/malonaz/carscout/internal/search"
	"github.com/malonaz/carscout/internal/view"
)

var log = debug.GetLogger()

var quitWords = map[string]struct{}{
	"quit": {},
	"exit": {},
	"q":    {},
}

// NewCmd instantiates and returns the search command.
func NewCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		Pick bool
	}
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search car listings",
		Long:  "Search car listings. Without a query, prompts for queries until quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := agent.NewClient(config.ServiceURL, config.Timeout())
			controller := newController(client)
			renderer, err := markdown.NewRenderer(cli.Width())
			if err != nil {
				return errors.Wrap(err, "creating markdown renderer")
			}
			r := &runner{controller: controller, renderer: renderer, pick: opts.Pick}

			if len(args) > 0 {
				return r.run(ctx, strings.Join(args, " "))
			}

			historyFile := filepath.Join(filepath.Dir(config.Chat.HistoryFile), "search_history")
			for {
				query, err := cli.PromptUser(historyFile)
				if err == readline.ErrInterrupt || err == io.EOF {
					return nil
				}
				if err != nil {
					return errors.Wrap(err, "reading query")
				}
				if _, ok := quitWords[strings.ToLower(strings.TrimSpace(query))]; ok {
					return nil
				}
				if err := r.run(ctx, query); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&opts.Pick, "pick", "p", false, "Pick a listing and copy its url to the clipboard")
	return cmd
}

const busyText = "Searching..."

// newController returns a search controller that shows a status line while a request runs.
func newController(client search.Client) *search.Controller {
	return search.New(client, search.WithBusyObserver(func(busy bool) {
		if busy {
			cli.Status(busyText)
			return
		}
		cli.ClearStatus()
	}))
}

type runner struct {
	controller *search.Controller
	renderer   *markdown.Renderer
	pick       bool
}

func (r *runner) run(ctx context.Context, query string) error {
	panel, err := r.controller.Submit(ctx, query)
	if err != nil {
		return err
	}
	Print(panel, r.renderer)

	result, ok := panel.(*view.ResultPanel)
	if !ok || !r.pick {
		return nil
	}
	return pickListing(result.Cards)
}

// Print writes a settled panel to the terminal. A nil renderer prints the analysis verbatim.
func Print(panel view.SearchPanel, renderer *markdown.Renderer) {
	switch panel := panel.(type) {
	case *view.ErrorPanel:
		cli.Error("%s\n", panel.Message)

	case *view.ResultPanel:
		cli.Query("%s\n", panel.QuotedQuery())
		cli.Count("%s\n", panel.Count)
		cli.Separator()
		if panel.Empty() {
			cli.Detail("%s\n", view.NoResultsText)
		}
		for _, card := range panel.Cards {
			cli.Listing("%d. %s\n", card.Index, card.Title)
			cli.Detail("   %s\n", strings.Join([]string{card.Price, card.Mileage, card.Location, card.Source}, " | "))
			if card.Linked {
				cli.Detail("   ")
				cli.Link(card.URL)
			}
		}
		if len(panel.Analysis) == 0 {
			return
		}
		cli.Separator()
		if renderer == nil {
			for _, paragraph := range panel.Analysis {
				cli.Analysis(paragraph.Text + "\n")
			}
			return
		}
		fmt.Println(renderer.Analysis(panel.Analysis))
	}
}

func pickListing(cards []view.ListingCard) error {
	var linked []view.ListingCard
	var options []string
	for _, card := range cards {
		if !card.Linked {
			continue
		}
		linked = append(linked, card)
		options = append(options, fmt.Sprintf("%d. %s (%s)", card.Index, card.Title, card.Price))
	}
	if len(linked) == 0 {
		cli.Detail("No listing has a link.\n")
		return nil
	}

	index, err := cli.SelectOption("Copy the link of", options)
	if err != nil {
		return errors.Wrap(err, "selecting listing")
	}
	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard unavailable", "error", err)
		cli.Link(linked[index].URL)
		return nil
	}
	clipboard.Write(clipboard.FmtText, []byte(linked[index].URL))
	cli.Count("Copied %s to clipboard!\n", linked[index].URL)
	return nil
}
