package nlp

import (
	"errors"
	"fmt"
	"strings"

	"MediVoice/pkg/locale"

	jsoniter "github.com/json-iterator/go"
)

var ErrEmptyIntent = errors.New("intent response is empty")

// MedicineIntent is the JSON document the LLM providers are asked for.
type MedicineIntent struct {
	Success       bool   `json:"success"`
	VoiceFeedback string `json:"voice_feedback"`
	Medicine      string `json:"medicine"`
	Dosage        string `json:"dosage"`
	Schedule      string `json:"schedule"`
}

var languageNames = locale.Table{
	locale.EnglishUS:  "English",
	locale.SpanishES:  "Spanish",
	locale.Indonesian: "Indonesian",
}

// IntentPrompt is the system prompt shared by every intent provider.
func IntentPrompt(l locale.Locale) string {
	return fmt.Sprintf(`You help elderly patients add a medicine to their daily plan by voice.
Read the patient's sentence and extract the medicine they want to add.

IMPORTANT: Return ONLY valid JSON, nothing else.

Format:
{
  "success": true,
  "voice_feedback": "Added aspirin, 100 mg, every morning.",
  "medicine": "aspirin",
  "dosage": "100 mg",
  "schedule": "every morning"
}

Rules:
- success is false when no medicine name can be found
- voice_feedback is one or two short sentences in %s, spoken back to the patient
- when success is false, voice_feedback politely asks the patient to say the medicine again
- dosage and schedule are empty strings when not mentioned
- never invent a dosage or a schedule`, locale.Localize(languageNames, l))
}

// ParseIntent decodes a provider response, tolerating markdown code fences.
func ParseIntent(raw string) (IntentResult, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)
	if body == "" {
		return IntentResult{}, ErrEmptyIntent
	}

	var intent MedicineIntent
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(body, &intent); err != nil {
		return IntentResult{}, fmt.Errorf("failed to parse medicine intent: %w", err)
	}

	result := IntentResult{
		Success:       intent.Success && strings.TrimSpace(intent.Medicine) != "",
		VoiceFeedback: strings.TrimSpace(intent.VoiceFeedback),
	}
	if result.Success {
		result.Data = map[string]interface{}{
			"medicine": intent.Medicine,
			"dosage":   intent.Dosage,
			"schedule": intent.Schedule,
		}
	}
	return result, nil
}
