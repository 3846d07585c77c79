package i18n

const (
	KeyRatesUpdated      = "rates.updated"
	KeyRatesStale        = "rates.stale"
	KeyRatesNone         = "rates.none"
	KeyCurrencyAdded     = "currency.added"
	KeyCurrencyRemoved   = "currency.removed"
	KeyCurrencyMoved     = "currency.moved"
	KeyCurrencyLimit     = "currency.limit"
	KeySettingsSaved     = "settings.saved"
	KeySettingsUnchanged = "settings.unchanged"
	KeyCopyDone          = "copy.done"
	KeyInstallDone       = "install.done"
	KeyDonateInvoice     = "donate.invoice"
	KeyDonateWaiting     = "donate.waiting"
	KeyDonateThanks      = "donate.thanks"
	KeyDonateFailed      = "donate.failed"
	KeyDonateDisabled    = "donate.disabled"
	KeyLangSet           = "lang.set"
	KeyWatchPrompt       = "watch.prompt"
	KeyInvalidAmount     = "error.amount"
	KeyUnknownCurrency   = "error.currency"
)

var messages = map[string]map[string]string{
	"en": {
		KeyRatesUpdated:      "Rates updated %s (%s)",
		KeyRatesStale:        "Showing saved rates from %s: %s",
		KeyRatesNone:         "No exchange rates available. Check your connection.",
		KeyCurrencyAdded:     "%s added",
		KeyCurrencyRemoved:   "%s removed",
		KeyCurrencyMoved:     "%s moved",
		KeyCurrencyLimit:     "Keep between %d and %d currencies",
		KeySettingsSaved:     "Settings saved",
		KeySettingsUnchanged: "Nothing changed",
		KeyCopyDone:          "Copied: %s",
		KeyInstallDone:       "%s installed for offline use (%s files)",
		KeyDonateInvoice:     "Pay this invoice to donate %s sats:",
		KeyDonateWaiting:     "Waiting for payment...",
		KeyDonateThanks:      "Thank you! Payment received.",
		KeyDonateFailed:      "Donation unavailable: %s",
		KeyDonateDisabled:    "No donation address configured",
		KeyLangSet:           "Language set to %s",
		KeyWatchPrompt:       "Enter an amount in %s (empty line to quit)",
		KeyInvalidAmount:     "Invalid amount: %s",
		KeyUnknownCurrency:   "Unknown currency: %s",
	},
	"es": {
		KeyRatesUpdated:      "Tasas actualizadas %s (%s)",
		KeyRatesStale:        "Mostrando tasas guardadas de %s: %s",
		KeyRatesNone:         "No hay tasas de cambio disponibles. Revisa tu conexión.",
		KeyCurrencyAdded:     "%s añadida",
		KeyCurrencyRemoved:   "%s eliminada",
		KeyCurrencyMoved:     "%s movida",
		KeyCurrencyLimit:     "Mantén entre %d y %d monedas",
		KeySettingsSaved:     "Ajustes guardados",
		KeySettingsUnchanged: "Sin cambios",
		KeyCopyDone:          "Copiado: %s",
		KeyInstallDone:       "%s instalada para uso sin conexión (%s archivos)",
		KeyDonateInvoice:     "Paga esta factura para donar %s sats:",
		KeyDonateWaiting:     "Esperando el pago...",
		KeyDonateThanks:      "¡Gracias! Pago recibido.",
		KeyDonateFailed:      "Donación no disponible: %s",
		KeyDonateDisabled:    "No hay dirección de donación configurada",
		KeyLangSet:           "Idioma cambiado a %s",
		KeyWatchPrompt:       "Introduce una cantidad en %s (línea vacía para salir)",
		KeyInvalidAmount:     "Cantidad no válida: %s",
		KeyUnknownCurrency:   "Moneda desconocida: %s",
	},
	"de": {
		KeyRatesUpdated:      "Kurse aktualisiert %s (%s)",
		KeyRatesStale:        "Gespeicherte Kurse vom %s: %s",
		KeyRatesNone:         "Keine Wechselkurse verfügbar. Prüfe deine Verbindung.",
		KeyCurrencyAdded:     "%s hinzugefügt",
		KeyCurrencyRemoved:   "%s entfernt",
		KeyCurrencyMoved:     "%s verschoben",
		KeyCurrencyLimit:     "Wähle zwischen %d und %d Währungen",
		KeySettingsSaved:     "Einstellungen gespeichert",
		KeySettingsUnchanged: "Keine Änderung",
		KeyCopyDone:          "Kopiert: %s",
		KeyInstallDone:       "%s für die Offline-Nutzung installiert (%s Dateien)",
		KeyDonateInvoice:     "Bezahle diese Rechnung, um %s Sats zu spenden:",
		KeyDonateWaiting:     "Warte auf Zahlung...",
		KeyDonateThanks:      "Danke! Zahlung erhalten.",
		KeyDonateFailed:      "Spende nicht möglich: %s",
		KeyDonateDisabled:    "Keine Spendenadresse konfiguriert",
		KeyLangSet:           "Sprache auf %s gesetzt",
		KeyWatchPrompt:       "Betrag in %s eingeben (leere Zeile zum Beenden)",
		KeyInvalidAmount:     "Ungültiger Betrag: %s",
		KeyUnknownCurrency:   "Unbekannte Währung: %s",
	},
	"fr": {
		KeyRatesUpdated:      "Taux mis à jour %s (%s)",
		KeyRatesStale:        "Taux enregistrés du %s : %s",
		KeyRatesNone:         "Aucun taux de change disponible. Vérifiez votre connexion.",
		KeyCurrencyAdded:     "%s ajoutée",
		KeyCurrencyRemoved:   "%s retirée",
		KeyCurrencyMoved:     "%s déplacée",
		KeyCurrencyLimit:     "Gardez entre %d et %d devises",
		KeySettingsSaved:     "Réglages enregistrés",
		KeySettingsUnchanged: "Aucun changement",
		KeyCopyDone:          "Copié : %s",
		KeyInstallDone:       "%s installée pour un usage hors ligne (%s fichiers)",
		KeyDonateInvoice:     "Payez cette facture pour donner %s sats :",
		KeyDonateWaiting:     "En attente du paiement...",
		KeyDonateThanks:      "Merci ! Paiement reçu.",
		KeyDonateFailed:      "Don indisponible : %s",
		KeyDonateDisabled:    "Aucune adresse de don configurée",
		KeyLangSet:           "Langue réglée sur %s",
		KeyWatchPrompt:       "Saisissez un montant en %s (ligne vide pour quitter)",
		KeyInvalidAmount:     "Montant invalide : %s",
		KeyUnknownCurrency:   "Devise inconnue : %s",
	},
}
