package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/i18n"
	"github.com/pkg/errors"
)

func (c *CLI) currencies(ctx context.Context, args []string) error {
	if len(args) == 0 {
		for i, cur := range c.app.Settings.Get().Currencies {
			c.println(c.out, fmt.Sprintf("%d. %s %s", i+1, upper(cur), cur.Symbol()))
		}
		return nil
	}

	switch args[0] {
	case "all":
		selected := c.app.Settings.Get().Currencies
		for _, cur := range entities.AllCurrencies() {
			mark := " "
			if slices.Contains(selected, cur) {
				mark = "*"
			}
			c.println(c.out, fmt.Sprintf("%s %s %s", mark, upper(cur), cur.Symbol()))
		}
		return nil
	case "add", "remove":
		if err := c.needArgs(args, 2, "currencies "+args[0]+" <currency>"); err != nil {
			return err
		}
		return c.toggle(ctx, args[0] == "add", args[1])
	case "move":
		if err := c.needArgs(args, 3, "currencies move <currency> <position>"); err != nil {
			return err
		}
		return c.move(ctx, args[1], args[2])
	default:
		return c.needArgs(nil, 1, "currencies [all|add|remove|move] ...")
	}
}

func (c *CLI) toggle(ctx context.Context, add bool, code string) error {
	cur, err := c.parseCurrency(code)
	if err != nil {
		return err
	}

	present := false
	for _, have := range c.app.Settings.Get().Currencies {
		if have == cur {
			present = true
			break
		}
	}
	if present == add {
		c.println(c.out, c.t(i18n.KeySettingsUnchanged))
		return nil
	}

	changed, err := c.app.Settings.ToggleCurrency(ctx, cur)
	if err != nil {
		return err
	}
	if !changed {
		c.println(c.errOut, c.t(i18n.KeyCurrencyLimit, entities.MinDisplayCurrencies, entities.MaxDisplayCurrencies))
		return nil
	}

	key, event := i18n.KeyCurrencyRemoved, entities.EventCurrencyRemoved
	if add {
		key, event = i18n.KeyCurrencyAdded, entities.EventCurrencyAdded
	}
	c.println(c.out, c.t(key, upper(cur)))
	c.app.Proxy.Track(event, map[string]string{"currency": string(cur)})
	return nil
}

func (c *CLI) move(ctx context.Context, code, position string) error {
	cur, err := c.parseCurrency(code)
	if err != nil {
		return err
	}
	pos, err := strconv.Atoi(position)
	if err != nil || pos < 1 {
		return c.needArgs(nil, 1, "currencies move <currency> <position>")
	}

	changed, err := c.app.Settings.MoveCurrency(ctx, cur, pos-1)
	if err != nil {
		return err
	}
	if !changed {
		c.println(c.out, c.t(i18n.KeySettingsUnchanged))
		return nil
	}

	c.println(c.out, c.t(i18n.KeyCurrencyMoved, upper(cur)))
	c.app.Proxy.Track(entities.EventSettingsChanged, map[string]string{"key": "order"})
	return nil
}

func (c *CLI) settings(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		c.showSettings(ctx)
		return nil
	}

	switch args[0] {
	case "reset":
		if err := c.app.Settings.Reset(ctx); err != nil {
			return err
		}
		c.println(c.out, c.t(i18n.KeySettingsSaved))
		c.app.Proxy.Track(entities.EventSettingsChanged, map[string]string{"key": "reset"})
		return nil
	case "set":
		if err := c.needArgs(args, 3, "settings set <key> <value>"); err != nil {
			return err
		}
	default:
		return c.needArgs(nil, 1, "settings [show|set <key> <value>|reset]")
	}

	key, value := args[1], args[2]
	changed, err := c.setSetting(ctx, key, value)
	if err != nil {
		return err
	}
	if !changed {
		c.println(c.out, c.t(i18n.KeySettingsUnchanged))
		return nil
	}

	c.println(c.out, c.t(i18n.KeySettingsSaved))
	c.app.Proxy.Track(entities.EventSettingsChanged, map[string]string{"key": key})
	return nil
}

func (c *CLI) setSetting(ctx context.Context, key, value string) (bool, error) {
	store := c.app.Settings

	switch key {
	case "theme":
		return store.SetTheme(ctx, entities.Theme(strings.ToLower(value)))
	case "separator":
		return store.SetDecimalSeparator(ctx, value)
	case "thousands", "thousands_on_copy":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.Wrapf(err, "settings: %s", key)
		}
		return store.SetThousandsOnCopy(ctx, on)
	case "auto_refresh":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.Wrapf(err, "settings: %s", key)
		}
		return store.SetAutoRefresh(ctx, on)
	case "compact":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.Wrapf(err, "settings: %s", key)
		}
		return store.SetCompactMode(ctx, on)
	default:
		return false, errors.Wrapf(ErrUsage, "unknown setting %q", key)
	}
}

func (c *CLI) showSettings(ctx context.Context) {
	st := c.app.Settings.Get()

	codes := make([]string, len(st.Currencies))
	for i, cur := range st.Currencies {
		codes[i] = string(cur)
	}

	rows := [][2]string{
		{"currencies", strings.Join(codes, ", ")},
		{"theme", string(st.Theme)},
		{"separator", st.DecimalSeparator},
		{"thousands_on_copy", strconv.FormatBool(st.ThousandsOnCopy)},
		{"auto_refresh", strconv.FormatBool(st.AutoRefresh)},
		{"compact", strconv.FormatBool(st.CompactMode)},
		{"language", c.app.Language(ctx)},
	}
	for _, r := range rows {
		c.println(c.out, fmt.Sprintf("%-18s %s", r[0]+":", r[1]))
	}
}

func (c *CLI) language(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.println(c.out, fmt.Sprintf("%s (%s)", c.app.Language(ctx), strings.Join(c.app.Catalog.Supported(), ", ")))
		return nil
	}

	lang, err := c.app.SetLanguage(ctx, args[0])
	if err != nil {
		return err
	}
	c.lang = lang

	c.println(c.out, c.t(i18n.KeyLangSet, lang))
	c.app.Proxy.Track(entities.EventSettingsChanged, map[string]string{"key": "language", "value": lang})
	return nil
}
