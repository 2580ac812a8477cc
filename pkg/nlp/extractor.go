package nlp

import (
	"regexp"
	"strings"
)

type DosageSignals struct {
	Verb       string   `json:"verb,omitempty"`
	Quantities []string `json:"quantities,omitempty"`
	Times      []string `json:"times,omitempty"`
	Frequency  []string `json:"frequency,omitempty"`
}

func (d DosageSignals) HasSchedule() bool {
	return len(d.Times) > 0 || len(d.Frequency) > 0
}

type DosageExtractor struct {
	quantity  *regexp.Regexp
	clock     *regexp.Regexp
	frequency []string
	verbs     []string
	// weak verbs describe a habit as often as they ask for a change, so
	// they only count alongside a dosage or a schedule.
	weak map[string]bool
}

func NewDosageExtractor() *DosageExtractor {
	numbers := strings.Join([]string{
		`\d+(?:[.,]\d+)?`,
		"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten", "half", "a",
		"uno", "una", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve", "diez", "media",
		"satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan", "sepuluh", "setengah",
	}, "|")

	units := strings.Join([]string{
		"mg", "milligrams?", "mcg", "micrograms?", "ml", "milliliters?", "grams?", "g",
		"tablets?", "pills?", "capsules?", "drops?", "puffs?", "units?", "spoons?", "teaspoons?",
		"miligramos?", "mililitros?", "gramos?", "tabletas?", "pastillas?", "capsulas?", "gotas?", "cucharadas?",
		"miligram", "mililiter", "gram", "tablet", "pil", "kapsul", "tetes", "butir", "sendok",
	}, "|")

	return &DosageExtractor{
		quantity: regexp.MustCompile(`\b(?:` + numbers + `)\s*(?:` + units + `)\b`),
		clock: regexp.MustCompile(
			`\b(?:at|a las|a la|jam|pukul)\s+\d{1,2}(?::\d{2})?\b` +
				`|\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b` +
				`|\b\d{1,2}:\d{2}\b`),
		frequency: []string{
			"every morning", "every evening", "every night", "every day", "every hour",
			"once a day", "twice a day", "three times a day", "daily", "before bed",
			"after breakfast", "after lunch", "after dinner", "with food",
			"cada manana", "cada noche", "cada dia", "todos los dias", "una vez al dia",
			"dos veces al dia", "tres veces al dia", "por la manana", "por la noche", "antes de dormir",
			"setiap pagi", "setiap malam", "setiap hari", "sekali sehari", "dua kali sehari",
			"tiga kali sehari", "sebelum tidur", "sesudah makan", "setelah makan",
		},
		verbs: []string{
			"add", "new medicine", "new pill", "remind me", "set a reminder", "i take", "i need to take",
			"agregar", "agrega", "anadir", "anade", "recuerdame", "nueva medicina", "nuevo medicamento", "tomo",
			"tambah", "tambahkan", "ingatkan", "obat baru", "saya minum",
		},
		weak: map[string]bool{"i take": true, "tomo": true, "saya minum": true},
	}
}

// Extract reports the dosage, clock-time and frequency phrases present in
// the utterance together with the first add/remind verb phrase.
func (e *DosageExtractor) Extract(utterance string) DosageSignals {
	text := Normalize(utterance)

	var out DosageSignals
	if text == "" {
		return out
	}

	padded := " " + text + " "
	for _, verb := range e.verbs {
		if strings.Contains(padded, " "+verb+" ") {
			out.Verb = verb
			break
		}
	}

	out.Quantities = e.quantity.FindAllString(text, -1)
	out.Times = e.clock.FindAllString(text, -1)
	for _, phrase := range e.frequency {
		if strings.Contains(padded, " "+phrase+" ") {
			out.Frequency = append(out.Frequency, phrase)
		}
	}

	return out
}

// LooksLikeAddRequest is a sentence-shape heuristic for "add this medicine":
// an add/remind verb followed by more words, or a dosage paired with a schedule.
// Habitual verbs such as "i take" need a dosage or a schedule as well.
func (e *DosageExtractor) LooksLikeAddRequest(utterance string) bool {
	signals := e.Extract(utterance)

	if signals.Verb != "" {
		if len(signals.Quantities) > 0 || signals.HasSchedule() {
			return true
		}
		if e.weak[signals.Verb] {
			return false
		}
		text := Normalize(utterance)
		_, rest, found := strings.Cut(" "+text+" ", " "+signals.Verb+" ")
		return found && len(fragments(rest)) > 0
	}

	return len(signals.Quantities) > 0 && signals.HasSchedule()
}
