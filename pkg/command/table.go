package command

import (
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
)

const (
	ActionStop           nlp.Action = "STOP"
	ActionVerifyMedicine nlp.Action = "VERIFY_MEDICINE"
	ActionAlarm          nlp.Action = "ALARM"
	ActionHome           nlp.Action = "HOME"
	ActionScan           nlp.Action = "SCAN"
	ActionMedicines      nlp.Action = "MEDICINES"
	ActionReminders      nlp.Action = "REMINDERS"
	ActionBack           nlp.Action = "BACK"
	ActionRepeat         nlp.Action = "REPEAT"
	ActionHelp           nlp.Action = "HELP"
)

const (
	ActionCapture  nlp.Action = "CAPTURE"
	ActionRetake   nlp.Action = "RETAKE"
	ActionCheck    nlp.Action = "CHECK"
	ActionConfirm  nlp.Action = "CONFIRM"
	ActionCancel   nlp.Action = "CANCEL"
	ActionTaken    nlp.Action = "TAKEN"
	ActionSnooze   nlp.Action = "SNOOZE"
	ActionCallHelp nlp.Action = "CALL_HELP"
)

type keywords = map[locale.Locale][]string

// DefaultTable is the global vocabulary. Order matters: the exact pass
// returns the first definition containing a hit, so STOP sits first and the
// more specific "verify medicine" phrases sit ahead of the medicines list.
func DefaultTable() []nlp.CommandDefinition {
	return []nlp.CommandDefinition{
		{Action: ActionStop, Keywords: keywords{
			locale.EnglishUS:  {"stop", "be quiet", "silence", "shut up", "enough"},
			locale.SpanishES:  {"detente", "callate", "silencio", "basta", "alto"},
			locale.Indonesian: {"berhenti", "diamlah", "stop bicara", "cukup"},
		}},
		{Action: ActionVerifyMedicine, Keywords: keywords{
			locale.EnglishUS:  {"verify medicine", "check medicine", "check my pill", "is this the right", "which pill"},
			locale.SpanishES:  {"verificar medicina", "verificar medicamento", "revisar pastilla", "cual pastilla"},
			locale.Indonesian: {"periksa obat", "cek obat", "verifikasi obat", "obat yang mana"},
		}},
		{Action: ActionAlarm, Keywords: keywords{
			locale.EnglishUS:  {"emergency", "call for help", "i fell down", "sos", "ambulance"},
			locale.SpanishES:  {"emergencia", "auxilio", "socorro", "me cai", "ambulancia"},
			locale.Indonesian: {"darurat", "tolong saya", "minta tolong", "saya jatuh", "ambulans"},
		}},
		{Action: ActionHome, Keywords: keywords{
			locale.EnglishUS:  {"home", "dashboard", "main screen", "start page"},
			locale.SpanishES:  {"inicio", "pantalla principal", "casa"},
			locale.Indonesian: {"beranda", "halaman utama", "rumah"},
		}},
		{Action: ActionScan, Keywords: keywords{
			locale.EnglishUS:  {"scan", "camera", "take a picture", "take a photo"},
			locale.SpanishES:  {"escanear", "camara", "tomar foto"},
			locale.Indonesian: {"pindai", "kamera", "ambil foto", "foto obat"},
		}},
		{Action: ActionMedicines, Keywords: keywords{
			locale.EnglishUS:  {"medicines", "medications", "my pills", "pill list", "medicine list"},
			locale.SpanishES:  {"medicinas", "medicamentos", "mis pastillas"},
			locale.Indonesian: {"daftar obat", "obat saya", "obat obatan"},
		}},
		{Action: ActionReminders, Keywords: keywords{
			locale.EnglishUS:  {"reminders", "reminder", "schedule", "alarms"},
			locale.SpanishES:  {"recordatorios", "recordatorio", "horario"},
			locale.Indonesian: {"pengingat", "jadwal"},
		}},
		{Action: ActionBack, Keywords: keywords{
			locale.EnglishUS:  {"go back", "back", "previous", "return"},
			locale.SpanishES:  {"atras", "volver", "regresar"},
			locale.Indonesian: {"kembali", "sebelumnya"},
		}},
		{Action: ActionRepeat, Keywords: keywords{
			locale.EnglishUS:  {"repeat", "say again", "say that again", "read it", "what did you say"},
			locale.SpanishES:  {"repite", "repetir", "otra vez", "lee esto"},
			locale.Indonesian: {"ulangi", "ulang", "bacakan"},
		}},
		{Action: ActionHelp, Keywords: keywords{
			locale.EnglishUS:  {"help", "what can i say", "commands", "options"},
			locale.SpanishES:  {"ayuda", "que puedo decir", "comandos", "opciones"},
			locale.Indonesian: {"bantuan", "perintah", "apa yang bisa"},
		}},
	}
}

// DefaultContextTable holds vocabularies that only mean something on one route.
func DefaultContextTable() map[string][]nlp.CommandDefinition {
	return map[string][]nlp.CommandDefinition{
		RouteScan: {
			{Action: ActionCapture, Keywords: keywords{
				locale.EnglishUS:  {"capture", "take it", "snap", "shoot", "click"},
				locale.SpanishES:  {"capturar", "toma la foto", "dispara"},
				locale.Indonesian: {"ambil", "jepret", "potret"},
			}},
			{Action: ActionRetake, Keywords: keywords{
				locale.EnglishUS:  {"retake", "try again", "one more time"},
				locale.SpanishES:  {"repetir foto", "otra foto", "de nuevo"},
				locale.Indonesian: {"ulang foto", "foto lagi", "coba lagi"},
			}},
		},
		RouteVerify: {
			{Action: ActionCheck, Keywords: keywords{
				locale.EnglishUS:  {"check", "verify", "is it right", "look at this"},
				locale.SpanishES:  {"comprobar", "verifica", "esta bien"},
				locale.Indonesian: {"cek", "periksa", "benar tidak"},
			}},
			{Action: ActionCancel, Keywords: keywords{
				locale.EnglishUS:  {"cancel", "never mind"},
				locale.SpanishES:  {"cancelar", "olvidalo"},
				locale.Indonesian: {"batal", "tidak jadi"},
			}},
		},
		RouteReminders: {
			{Action: ActionTaken, Keywords: keywords{
				locale.EnglishUS:  {"taken", "i took it", "done", "already took"},
				locale.SpanishES:  {"ya la tome", "tomada", "hecho"},
				locale.Indonesian: {"sudah minum", "sudah diminum", "selesai"},
			}},
			{Action: ActionSnooze, Keywords: keywords{
				locale.EnglishUS:  {"snooze", "later", "remind me later"},
				locale.SpanishES:  {"despues", "mas tarde", "posponer"},
				locale.Indonesian: {"nanti", "tunda"},
			}},
			{Action: ActionConfirm, Keywords: keywords{
				locale.EnglishUS:  {"confirm", "yes please", "that's right"},
				locale.SpanishES:  {"confirmar", "correcto"},
				locale.Indonesian: {"konfirmasi", "betul"},
			}},
		},
		RouteAlarm: {
			{Action: ActionCallHelp, Keywords: keywords{
				locale.EnglishUS:  {"call now", "call my family", "call someone"},
				locale.SpanishES:  {"llama ahora", "llamar a mi familia"},
				locale.Indonesian: {"telepon sekarang", "hubungi keluarga"},
			}},
			{Action: ActionCancel, Keywords: keywords{
				locale.EnglishUS:  {"cancel", "false alarm", "i am okay", "i'm okay"},
				locale.SpanishES:  {"cancelar", "falsa alarma", "estoy bien"},
				locale.Indonesian: {"batal", "alarm palsu", "saya baik"},
			}},
		},
	}
}
