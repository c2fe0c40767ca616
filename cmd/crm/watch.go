package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/events"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/ui"
)

var contactsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show contacts and keep the list current",
	Long: `Show contacts and keep the list current.

With CRM_NATS_URL set, contact events are applied as they arrive and the list
is reloaded after a reconnect. Otherwise the list is reloaded every --interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		statusFlag, _ := cmd.Flags().GetString("status")
		interval, _ := cmd.Flags().GetDuration("interval")
		status, err := parseStatus(statusFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		r := &liveRenderer{out: cmd.OutOrStdout(), clear: !jsonOutput && ui.IsTerminal(os.Stdout)}
		ctrl, err := newContactsController(r.render)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := ctrl.LoadFresh(collection.Filter{Search: strings.TrimSpace(search), Status: string(status)}); err != nil {
			return err
		}

		if cfg.NATSURL != "" {
			return watchNATS(ctx, cfg.NATSURL, ctrl)
		}
		return watchPoll(ctx, interval, ctrl)
	},
}

// watchNATS applies contact events to ctrl until ctx is done.
func watchNATS(ctx context.Context, natsURL string, ctrl *contactsController) error {
	reload := func() {
		if err := ctrl.LoadFresh(ctrl.Snapshot().Applied); err != nil {
			logger.Debug("reload after reconnect skipped", "err", err)
		}
	}
	sub, err := events.NewNATSSubscriber(natsURL, events.ConnectionHandlers(logger, reload)...)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	return events.NewFeed(sub, ctrl, logger).Run(ctx)
}

// watchPoll reloads ctrl at the given interval until ctx is done.
func watchPoll(ctx context.Context, interval time.Duration, ctrl *contactsController) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := ctrl.LoadFresh(ctrl.Snapshot().Applied); err != nil {
				return err
			}
		}
	}
}

// liveRenderer redraws the contact list on every settled snapshot. Snapshots
// older than the last one drawn are ignored.
type liveRenderer struct {
	out   io.Writer
	clear bool

	mu   sync.Mutex
	last uint64
}

func (r *liveRenderer) render(s collection.Snapshot[*model.Contact]) {
	if s.State.Kind == collection.StateLoading {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Version <= r.last {
		return
	}
	r.last = s.Version

	if jsonOutput {
		_ = printJSON(r.out, s.Items)
		return
	}
	if r.clear {
		fmt.Fprint(r.out, "\x1b[H\x1b[2J")
	}
	fmt.Fprintf(r.out, "%s  %s\n\n", ui.RenderAccent("Contacts"), ui.RenderMuted(time.Now().Format("15:04:05")))
	if len(s.Items) == 0 {
		fmt.Fprintln(r.out, "No contacts found.")
	} else {
		printContactTable(r.out, s.Items)
		fmt.Fprintln(r.out)
	}
	printFooter(r.out, s, "contacts")
}

func init() {
	contactsWatchCmd.Flags().StringP("search", "q", "", "search name, email and company")
	contactsWatchCmd.Flags().StringP("status", "s", "", "filter by status")
	contactsWatchCmd.Flags().Duration("interval", 30*time.Second, "poll interval when NATS is not configured")
}
