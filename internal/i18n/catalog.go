// Package i18n holds the translated strings shown to the user.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text lives in the catalog like every other language.
const (
	ChatOffline     = "chat.offline"
	ChatAdded       = "chat.added"
	ChatUpdated     = "chat.updated"
	ChatDeleted     = "chat.deleted"
	ChatNotFound    = "chat.not_found"
	TypeIncome      = "type.income"
	TypeExpense     = "type.expense"
	LabelIncome     = "label.income"
	LabelExpenses   = "label.expenses"
	LabelBalance    = "label.balance"
	LabelBreakdown  = "label.breakdown"
	LabelRecent     = "label.recent"
	LabelNoData     = "label.no_data"
	LabelGreeting   = "label.greeting"
	LabelSettings   = "label.settings"
	LabelDownload   = "label.download"
	LabelAssistant  = "label.assistant"
	LabelAddTx      = "label.add_transaction"
	LabelSetupTitle = "label.setup_title"
)

var tags = map[string]language.Tag{
	"en": language.English,
	"de": language.German,
	"es": language.Spanish,
	"fr": language.French,
	"hi": language.Hindi,
}

// Confirmation arguments: type, currency, amount, category, description, date.
var entries = map[string]map[string]string{
	"en": {
		ChatOffline:     "The assistant is offline right now. You can still add transactions manually.",
		ChatAdded:       "Added %[1]s of %[2]s%[3]s in %[4]s: %[5]s (%[6]s)",
		ChatUpdated:     "Updated %[1]s of %[2]s%[3]s in %[4]s: %[5]s (%[6]s)",
		ChatDeleted:     "Deleted %[1]s of %[2]s%[3]s in %[4]s: %[5]s (%[6]s)",
		ChatNotFound:    "I could not find that transaction. Could you describe it differently?",
		TypeIncome:      "income",
		TypeExpense:     "expense",
		LabelIncome:     "Total Income",
		LabelExpenses:   "Total Expenses",
		LabelBalance:    "Balance",
		LabelBreakdown:  "Spending by category",
		LabelRecent:     "Recent transactions",
		LabelNoData:     "No transactions yet.",
		LabelGreeting:   "Hello, %s",
		LabelSettings:   "Settings",
		LabelDownload:   "Download report",
		LabelAssistant:  "Assistant",
		LabelAddTx:      "Add transaction",
		LabelSetupTitle: "Tell us about yourself",
	},
	"de": {
		ChatOffline:     "Der Assistent ist gerade offline. Du kannst Buchungen weiterhin manuell erfassen.",
		ChatAdded:       "%[1]s über %[2]s%[3]s in %[4]s hinzugefügt: %[5]s (%[6]s)",
		ChatUpdated:     "%[1]s über %[2]s%[3]s in %[4]s aktualisiert: %[5]s (%[6]s)",
		ChatDeleted:     "%[1]s über %[2]s%[3]s in %[4]s gelöscht: %[5]s (%[6]s)",
		ChatNotFound:    "Ich konnte diese Buchung nicht finden. Kannst du sie anders beschreiben?",
		TypeIncome:      "Einnahme",
		TypeExpense:     "Ausgabe",
		LabelIncome:     "Einnahmen gesamt",
		LabelExpenses:   "Ausgaben gesamt",
		LabelBalance:    "Saldo",
		LabelBreakdown:  "Ausgaben nach Kategorie",
		LabelRecent:     "Letzte Buchungen",
		LabelNoData:     "Noch keine Buchungen.",
		LabelGreeting:   "Hallo, %s",
		LabelSettings:   "Einstellungen",
		LabelDownload:   "Bericht herunterladen",
		LabelAssistant:  "Assistent",
		LabelAddTx:      "Buchung hinzufügen",
		LabelSetupTitle: "Erzähl uns von dir",
	},
	"es": {
		ChatOffline:     "El asistente no está disponible ahora. Puedes seguir añadiendo transacciones manualmente.",
		ChatAdded:       "Se añadió %[1]s de %[2]s%[3]s en %[4]s: %[5]s (%[6]s)",
		ChatUpdated:     "Se actualizó %[1]s de %[2]s%[3]s en %[4]s: %[5]s (%[6]s)",
		ChatDeleted:     "Se eliminó %[1]s de %[2]s%[3]s en %[4]s: %[5]s (%[6]s)",
		ChatNotFound:    "No encontré esa transacción. ¿Puedes describirla de otra forma?",
		TypeIncome:      "ingreso",
		TypeExpense:     "gasto",
		LabelIncome:     "Ingresos totales",
		LabelExpenses:   "Gastos totales",
		LabelBalance:    "Saldo",
		LabelBreakdown:  "Gastos por categoría",
		LabelRecent:     "Transacciones recientes",
		LabelNoData:     "Aún no hay transacciones.",
		LabelGreeting:   "Hola, %s",
		LabelSettings:   "Ajustes",
		LabelDownload:   "Descargar informe",
		LabelAssistant:  "Asistente",
		LabelAddTx:      "Añadir transacción",
		LabelSetupTitle: "Cuéntanos sobre ti",
	},
	"fr": {
		ChatOffline:     "L'assistant est hors ligne pour le moment. Vous pouvez toujours ajouter des transactions manuellement.",
		ChatAdded:       "%[1]s de %[2]s%[3]s ajoutée dans %[4]s : %[5]s (%[6]s)",
		ChatUpdated:     "%[1]s de %[2]s%[3]s mise à jour dans %[4]s : %[5]s (%[6]s)",
		ChatDeleted:     "%[1]s de %[2]s%[3]s supprimée dans %[4]s : %[5]s (%[6]s)",
		ChatNotFound:    "Je n'ai pas trouvé cette transaction. Pouvez-vous la décrire autrement ?",
		TypeIncome:      "Recette",
		TypeExpense:     "Dépense",
		LabelIncome:     "Revenus totaux",
		LabelExpenses:   "Dépenses totales",
		LabelBalance:    "Solde",
		LabelBreakdown:  "Dépenses par catégorie",
		LabelRecent:     "Transactions récentes",
		LabelNoData:     "Aucune transaction pour l'instant.",
		LabelGreeting:   "Bonjour, %s",
		LabelSettings:   "Paramètres",
		LabelDownload:   "Télécharger le rapport",
		LabelAssistant:  "Assistant",
		LabelAddTx:      "Ajouter une transaction",
		LabelSetupTitle: "Parlez-nous de vous",
	},
	"hi": {
		ChatOffline:     "सहायक अभी ऑफ़लाइन है। आप अब भी लेन-देन मैन्युअल रूप से जोड़ सकते हैं।",
		ChatAdded:       "%[4]s में %[2]s%[3]s का %[1]s जोड़ा गया: %[5]s (%[6]s)",
		ChatUpdated:     "%[4]s में %[2]s%[3]s का %[1]s अपडेट किया गया: %[5]s (%[6]s)",
		ChatDeleted:     "%[4]s में %[2]s%[3]s का %[1]s हटाया गया: %[5]s (%[6]s)",
		ChatNotFound:    "मुझे वह लेन-देन नहीं मिला। क्या आप उसे अलग तरह से बता सकते हैं?",
		TypeIncome:      "आय",
		TypeExpense:     "खर्च",
		LabelIncome:     "कुल आय",
		LabelExpenses:   "कुल खर्च",
		LabelBalance:    "शेष राशि",
		LabelBreakdown:  "श्रेणी के अनुसार खर्च",
		LabelRecent:     "हाल के लेन-देन",
		LabelNoData:     "अभी तक कोई लेन-देन नहीं।",
		LabelGreeting:   "नमस्ते, %s",
		LabelSettings:   "सेटिंग्स",
		LabelDownload:   "रिपोर्ट डाउनलोड करें",
		LabelAssistant:  "सहायक",
		LabelAddTx:      "लेन-देन जोड़ें",
		LabelSetupTitle: "अपने बारे में बताएं",
	},
}

var cat = build()

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, msgs := range entries {
		tag := tags[lang]
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic("i18n: " + lang + " " + key + ": " + err.Error())
			}
		}
	}
	return b
}

// Printer returns a printer for the two-letter language code. Unknown codes
// print English.
func Printer(lang string) *message.Printer {
	tag, ok := tags[lang]
	if !ok {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{"en", "de", "es", "fr", "hi"}
}
