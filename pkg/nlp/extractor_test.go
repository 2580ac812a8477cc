package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeAddRequest(t *testing.T) {
	e := NewDosageExtractor()

	yes := []string{
		"add aspirin 100 mg every morning",
		"Remind me to take metformin at 8",
		"I take two pills twice a day",
		"add vitamin d",
		"500mg paracetamol at 9 pm",
		"agregar ibuprofeno 200 mg cada noche",
		"tambahkan obat amlodipin 5 mg setiap pagi",
		"i take 2 pills at 8 am",
		"tomo dos pastillas cada noche",
		"saya minum 1 tablet setiap pagi",
	}
	for _, utterance := range yes {
		assert.True(t, e.LooksLikeAddRequest(utterance), utterance)
	}

	no := []string{
		"go home please",
		"show my reminders",
		"add",
		"remind me",
		"scan",
		"100 mg",
		"what time is it",
		"address book",
		"which pill do i take now",
		"tomo mis pastillas",
		"saya minum obat",
		"",
	}
	for _, utterance := range no {
		assert.False(t, e.LooksLikeAddRequest(utterance), utterance)
	}
}

func TestExtractSignals(t *testing.T) {
	e := NewDosageExtractor()

	signals := e.Extract("Add lisinopril 10 mg at 7:30 every day")
	assert.Equal(t, "add", signals.Verb)
	assert.Equal(t, []string{"10 mg"}, signals.Quantities)
	assert.Equal(t, []string{"at 7:30"}, signals.Times)
	assert.Equal(t, []string{"every day"}, signals.Frequency)
	assert.True(t, signals.HasSchedule())

	assert.Equal(t, DosageSignals{}, e.Extract("   "))
}
