package command

import (
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
)

var confirmations = map[nlp.Action]locale.Table{
	ActionHome: {
		locale.EnglishUS:  "Taking you home",
		locale.SpanishES:  "Te llevo al inicio",
		locale.Indonesian: "Kembali ke beranda",
	},
	ActionScan: {
		locale.EnglishUS:  "Opening the camera",
		locale.SpanishES:  "Abriendo la camara",
		locale.Indonesian: "Membuka kamera",
	},
	ActionMedicines: {
		locale.EnglishUS:  "Here are your medicines",
		locale.SpanishES:  "Aqui estan tus medicinas",
		locale.Indonesian: "Ini daftar obat Anda",
	},
	ActionReminders: {
		locale.EnglishUS:  "Opening your reminders",
		locale.SpanishES:  "Abriendo tus recordatorios",
		locale.Indonesian: "Membuka pengingat Anda",
	},
	ActionBack: {
		locale.EnglishUS:  "Going back",
		locale.SpanishES:  "Volviendo",
		locale.Indonesian: "Kembali",
	},
	ActionVerifyMedicine: {
		locale.EnglishUS:  "Let's check your medicine",
		locale.SpanishES:  "Vamos a revisar tu medicina",
		locale.Indonesian: "Mari periksa obat Anda",
	},
	ActionAlarm: {
		locale.EnglishUS:  "Opening emergency help",
		locale.SpanishES:  "Abriendo ayuda de emergencia",
		locale.Indonesian: "Membuka bantuan darurat",
	},
}

var (
	helpMessage = locale.Table{
		locale.EnglishUS:  "You can say: home, scan, my medicines, reminders, verify medicine, emergency, go back, repeat, or stop.",
		locale.SpanishES:  "Puedes decir: inicio, escanear, mis medicinas, recordatorios, verificar medicina, emergencia, atras, repite o detente.",
		locale.Indonesian: "Anda bisa bilang: beranda, pindai, obat saya, pengingat, periksa obat, darurat, kembali, ulangi, atau berhenti.",
	}
	nothingToRepeat = locale.Table{
		locale.EnglishUS:  "There is nothing to repeat on this page",
		locale.SpanishES:  "No hay nada que repetir en esta pagina",
		locale.Indonesian: "Tidak ada yang bisa diulang di halaman ini",
	}
	alreadyVerifying = locale.Table{
		locale.EnglishUS:  "You are already on medicine check. Show me the medicine.",
		locale.SpanishES:  "Ya estas en la verificacion. Muestrame la medicina.",
		locale.Indonesian: "Anda sudah di pemeriksaan obat. Tunjukkan obatnya.",
	}
	contextAck = locale.Table{
		locale.EnglishUS:  "Okay",
		locale.SpanishES:  "De acuerdo",
		locale.Indonesian: "Baik",
	}
	intentUnavailable = locale.Table{
		locale.EnglishUS:  "Sorry, I can't add medicines right now",
		locale.SpanishES:  "Lo siento, ahora no puedo agregar medicinas",
		locale.Indonesian: "Maaf, saya belum bisa menambah obat sekarang",
	}
	intentFailed = locale.Table{
		locale.EnglishUS:  "Sorry, I could not understand that medicine. Please try again.",
		locale.SpanishES:  "Lo siento, no entendi esa medicina. Intenta de nuevo.",
		locale.Indonesian: "Maaf, saya tidak mengerti obat itu. Silakan coba lagi.",
	}
)

// HelpMessage returns the spoken command list for l.
func HelpMessage(l locale.Locale) string {
	return locale.Localize(helpMessage, l)
}
