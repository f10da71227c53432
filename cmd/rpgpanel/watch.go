package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rpgpanel/internal/notify"
	"rpgpanel/internal/panel"
	"rpgpanel/internal/resource"
	"rpgpanel/internal/scheduler"
)

const toastLines = 3

func watchCmd() *cobra.Command {
	var interval time.Duration
	var search string
	cmd := &cobra.Command{
		Use:   "watch <panel>...",
		Short: "Poll panels and redraw the focused one",
		Long: "Poll panels and redraw the focused one. Only the focused panel is refreshed.\n" +
			"Type a panel name or number and press enter to switch; n and p cycle, q quits.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			return runWatch(args, interval, search)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Poll interval for panels that do not set one")
	cmd.Flags().StringVar(&search, "search", "", "Search applied to every panel")
	return cmd
}

func runWatch(names []string, interval time.Duration, search string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	sched := scheduler.New(log.New(os.Stderr, "rpgpanel: ", log.LstdFlags))
	panels, err := startWatch(ctx, a.registry, sched, names, interval)
	if err != nil {
		return err
	}
	defer sched.Stop()
	focus := 0

	lines := make(chan string)
	go readLines(os.Stdin, lines)

	filter := resource.NewFilter(search, nil)
	redraw := time.NewTicker(time.Second)
	defer redraw.Stop()

	var toasts []notify.Toast
	for {
		toasts = lastToasts(append(toasts, a.notifier.Drain()...), toastLines)
		renderWatch(os.Stdout, a.username, panels, focus, filter, toasts)

		select {
		case <-ctx.Done():
			return nil
		case <-redraw.C:
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			next, quit := nextFocus(line, panelNames(panels), focus)
			if quit {
				return nil
			}
			if next != focus {
				focus = next
				if err := sched.Show(panels[focus].Name()); err != nil {
					return err
				}
			}
		}
	}
}

// startWatch begins the first load of every named panel at once, then
// schedules them and shows the first. Only the shown panel keeps polling.
func startWatch(ctx context.Context, reg *panel.Registry, sched *scheduler.Scheduler, names []string, interval time.Duration) ([]*panel.Panel, error) {
	panels, err := reg.Preload(ctx, names...)
	if err != nil {
		return nil, err
	}
	for _, p := range panels {
		every := p.Descriptor().Poll
		if every <= 0 {
			every = interval
		}
		if err := sched.Register(p.Name(), every, p); err != nil {
			return nil, err
		}
	}
	sched.Start(ctx)
	if err := sched.Show(panels[0].Name()); err != nil {
		sched.Stop()
		return nil, err
	}
	return panels, nil
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// nextFocus interprets one line of watch input. Unknown input keeps the
// current panel.
func nextFocus(input string, names []string, current int) (int, bool) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "":
		return current, false
	case "q", "quit", "exit":
		return current, true
	case "n", "next":
		return (current + 1) % len(names), false
	case "p", "prev":
		return (current + len(names) - 1) % len(names), false
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(names) {
			return n - 1, false
		}
		return current, false
	}
	for i, name := range names {
		if strings.EqualFold(name, input) {
			return i, false
		}
	}
	return current, false
}

func panelNames(panels []*panel.Panel) []string {
	names := make([]string, 0, len(panels))
	for _, p := range panels {
		names = append(names, p.Name())
	}
	return names
}

func lastToasts(toasts []notify.Toast, n int) []notify.Toast {
	if len(toasts) > n {
		return toasts[len(toasts)-n:]
	}
	return toasts
}

func renderWatch(out io.Writer, user string, panels []*panel.Panel, focus int, filter resource.FilterState, toasts []notify.Toast) {
	fmt.Fprint(out, "\033[H\033[2J")
	if user != "" {
		fmt.Fprintf(out, "Signed in as %s\n", user)
	}

	tabs := make([]string, 0, len(panels))
	for i, p := range panels {
		label := fmt.Sprintf("%d:%s", i+1, p.Descriptor().Title)
		if i == focus {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintln(out, strings.Join(tabs, "  "))
	fmt.Fprintln(out)

	p := panels[focus]
	switch p.State() {
	case panel.StateError:
		fmt.Fprintf(out, "Error: %v\nRetrying on the next poll.\n", p.Err())
	case panel.StateLoading, panel.StateUninitialized:
		if p.Len() == 0 {
			fmt.Fprintln(out, "Loading...")
			break
		}
		fallthrough
	default:
		if err := p.View(filter).Write(out, p.Descriptor()); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	if len(toasts) > 0 {
		fmt.Fprintln(out)
		for _, t := range toasts {
			fmt.Fprintf(out, "%s %s: %s\n", t.At.Format("15:04:05"), t.Panel, t.Message)
		}
	}
}
