package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// now is the clock used for relative --since values and table dates.
var now = time.Now

// windowFlags are the filters shared by messages, emails and notes.
type windowFlags struct {
	limit   int
	since   string
	sources string
	json    bool
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "maximum number of items")
	cmd.Flags().StringVar(&f.since, "since", "", "only items newer than a duration (24h, 7d), RFC 3339 time or date")
	cmd.Flags().StringVarP(&f.sources, "sources", "s", "", "comma separated source types, e.g. gmail,outlook")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *windowFlags) window() (domain.Window, error) {
	sources, err := view.ParseSourceTypes(f.sources)
	if err != nil {
		return domain.Window{}, err
	}
	since, err := view.ParseSince(f.since, now())
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Window{Limit: f.limit, Since: since, SourceTypes: sources}, nil
}
