package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/langowen/satsconv/internal/converter/poller"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/i18n"
)

// watch renders every entered amount after the input has been quiet for the
// debounce delay. Rates refresh in the background while the user is active.
func (c *CLI) watch(ctx context.Context, args []string, in io.Reader) error {
	from := c.app.SelectedCurrency(ctx)
	if len(args) > 0 {
		cur, err := c.parseCurrency(args[0])
		if err != nil {
			return err
		}
		from = cur
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if c.app.Settings.Get().AutoRefresh {
		p := poller.New(c.app.Cfg.Client.PollInterval, c.app.Activity, func(ctx context.Context) error {
			_, err := c.app.Rates.Get(ctx)
			return err
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Start(ctx)
		}()
	}

	c.println(c.errOut, c.t(i18n.KeyWatchPrompt, upper(from)))
	c.app.Activity.Touch()

	w := &watcher{cli: c, from: from}
	debouncer := poller.NewDebouncer(c.app.Cfg.Client.Debounce)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		c.app.Activity.Touch()

		seq := w.submit(line)
		debouncer.Submit(func() { w.render(ctx, seq) })
	}

	debouncer.Stop()
	w.flush(ctx)

	cancel()
	wg.Wait()

	if err := c.app.Local.SetSelectedCurrency(context.WithoutCancel(ctx), from); err != nil {
		c.println(c.errOut, err.Error())
	}
	return scanner.Err()
}

// watcher makes sure the last entered amount is rendered exactly once, either
// by the debouncer or by flush on exit.
type watcher struct {
	cli  *CLI
	from entities.Currency

	mu       sync.Mutex
	latest   string
	seq      int
	rendered int
	closed   bool
}

func (w *watcher) submit(line string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.latest = line
	return w.seq
}

func (w *watcher) render(ctx context.Context, seq int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || seq != w.seq || w.rendered == seq {
		return
	}
	w.rendered = seq
	_ = w.cli.render(ctx, w.latest, w.from)
}

func (w *watcher) flush(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.seq > 0 && w.rendered != w.seq {
		w.rendered = w.seq
		_ = w.cli.render(ctx, w.latest, w.from)
	}
}
