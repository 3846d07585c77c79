package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/i18n"
	"github.com/pkg/errors"
)

// install stores the shell listed by the backend in the offline cache.
func (c *CLI) install(ctx context.Context) error {
	const op = "cli.install"

	m, err := c.app.Proxy.Manifest(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}

	paths, err := c.app.Proxy.PrecacheList(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := c.app.Offline.Precache(ctx, c.app.Proxy.BaseURL(), paths); err != nil {
		return errors.Wrap(err, op)
	}

	c.println(c.out, c.t(i18n.KeyInstallDone, m.Name, strconv.Itoa(len(paths))))
	c.app.Proxy.Track(entities.EventInstall, map[string]string{"files": strconv.Itoa(len(paths))})
	return nil
}

// donate never fails the command: problems are shown as a notice.
func (c *CLI) donate(ctx context.Context, args []string) error {
	if err := c.needArgs(args, 1, "donate <sats> [comment]"); err != nil {
		return err
	}

	address := c.app.Cfg.Client.DonateAddress
	if address == "" {
		c.println(c.errOut, c.t(i18n.KeyDonateDisabled))
		return nil
	}

	sats, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || sats <= 0 {
		c.println(c.errOut, c.t(i18n.KeyInvalidAmount, args[0]))
		return errors.Wrap(entities.ErrInvalidAmount, args[0])
	}

	comment := ""
	if len(args) > 1 {
		comment = strings.Join(args[1:], " ")
	}

	c.app.Proxy.Track(entities.EventDonationStarted, map[string]string{"sats": args[0]})

	inv, err := c.app.Donation.Invoice(ctx, address, sats, comment)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyDonateFailed, reason(err)))
		return nil
	}

	c.println(c.out, c.t(i18n.KeyDonateInvoice, args[0]))
	c.println(c.out, inv.PR)

	if inv.VerifyURL == "" {
		return nil
	}

	c.println(c.errOut, c.t(i18n.KeyDonateWaiting))

	waitCtx, cancel := context.WithTimeout(ctx, c.donateTimeout)
	defer cancel()

	if err := c.app.Donation.WaitPaid(waitCtx, inv, c.donatePoll); err != nil {
		c.println(c.errOut, c.t(i18n.KeyDonateFailed, reason(err)))
		return nil
	}

	c.println(c.out, c.t(i18n.KeyDonateThanks))
	c.app.Proxy.Track(entities.EventDonationPaid, map[string]string{"sats": args[0]})
	return nil
}
