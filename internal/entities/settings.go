package entities

const (
	MinDisplayCurrencies = 2
	MaxDisplayCurrencies = 6
)

type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeSystem || t == ThemeLight || t == ThemeDark
}

// Settings is the persisted user preferences record.
type Settings struct {
	Currencies       []Currency `json:"currencies"`
	Theme            Theme      `json:"theme"`
	DecimalSeparator string     `json:"decimal_separator"`
	ThousandsOnCopy  bool       `json:"thousands_on_copy"`
	AutoRefresh      bool       `json:"auto_refresh"`
	CompactMode      bool       `json:"compact_mode"`
}

func DefaultSettings() Settings {
	return Settings{
		Currencies:       []Currency{BTC, SATS, USD, EUR},
		Theme:            ThemeSystem,
		DecimalSeparator: ".",
		ThousandsOnCopy:  false,
		AutoRefresh:      true,
	}
}

// Valid reports whether s can be used as is. Records failing this check are
// replaced with defaults on load.
func (s Settings) Valid() bool {
	if len(s.Currencies) < MinDisplayCurrencies || len(s.Currencies) > MaxDisplayCurrencies {
		return false
	}
	seen := make(map[Currency]struct{}, len(s.Currencies))
	for _, c := range s.Currencies {
		if !c.Valid() {
			return false
		}
		if _, dup := seen[c]; dup {
			return false
		}
		seen[c] = struct{}{}
	}
	if s.DecimalSeparator != "." && s.DecimalSeparator != "," {
		return false
	}
	return s.Theme.Valid()
}

func (s Settings) Clone() Settings {
	out := s
	out.Currencies = append([]Currency(nil), s.Currencies...)
	return out
}
