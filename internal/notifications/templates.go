package notifications

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"barbershop-backend/internal/catalog"
	"barbershop-backend/internal/models"
)

var messageTemplates = map[EventKind]models.Localized{
	EventBookingCreated: {
		EN: "New booking request: {{.Name}} ({{.Phone}}) for {{.Service}} on {{.Date}} at {{.Time}}.",
		AR: "طلب حجز جديد: {{.Name}} ({{.Phone}}) لخدمة {{.Service}} بتاريخ {{.Date}} الساعة {{.Time}}.",
		HE: "בקשת תור חדשה: {{.Name}} ({{.Phone}}) עבור {{.Service}} בתאריך {{.Date}} בשעה {{.Time}}.",
	},
	EventBookingApproved: {
		EN: "Hi {{.Name}}, your {{.Service}} appointment on {{.Date}} at {{.Time}} is confirmed. See you soon!",
		AR: "مرحباً {{.Name}}، تم تأكيد موعدك لخدمة {{.Service}} بتاريخ {{.Date}} الساعة {{.Time}}. نراك قريباً!",
		HE: "שלום {{.Name}}, התור שלך ל{{.Service}} בתאריך {{.Date}} בשעה {{.Time}} אושר. נתראה בקרוב!",
	},
	EventBookingRejected: {
		EN: "Hi {{.Name}}, unfortunately we cannot take your {{.Service}} appointment on {{.Date}} at {{.Time}}. Please choose another time.",
		AR: "مرحباً {{.Name}}، للأسف لا يمكننا استقبال موعدك لخدمة {{.Service}} بتاريخ {{.Date}} الساعة {{.Time}}. يرجى اختيار وقت آخر.",
		HE: "שלום {{.Name}}, לצערנו לא נוכל לקבל את התור שלך ל{{.Service}} בתאריך {{.Date}} בשעה {{.Time}}. אנא בחרו מועד אחר.",
	},
}

var subjects = map[EventKind]models.Localized{
	EventBookingCreated: {
		EN: "New booking request",
		AR: "طلب حجز جديد",
		HE: "בקשת תור חדשה",
	},
	EventBookingApproved: {
		EN: "Your appointment is confirmed",
		AR: "تم تأكيد موعدك",
		HE: "התור שלך אושר",
	},
	EventBookingRejected: {
		EN: "Your appointment request",
		AR: "بخصوص طلب موعدك",
		HE: "לגבי בקשת התור שלך",
	},
}

const emailTemplate = `<!DOCTYPE html>
<html{{if .RTL}} dir="rtl"{{end}}>
<body>
  <p>{{.Message}}</p>
  <ul>
    <li>{{.Service}}</li>
    <li>{{.Date}} {{.Time}}</li>
    <li>#{{.BookingID}}</li>
  </ul>
</body>
</html>`

var emailTmpl = htmltemplate.Must(htmltemplate.New("booking_email").Parse(emailTemplate))

type messageData struct {
	Name    string
	Phone   string
	Service string
	Date    string
	Time    string
}

type emailData struct {
	messageData
	Message   string
	BookingID string
	RTL       bool
}

func templateLang(kind EventKind, b models.Booking) string {
	// owner messages default to Hebrew, customer messages to English
	if b.Lang == "" {
		if kind.ToOwner() {
			return models.LangHebrew
		}
		return models.LangEnglish
	}
	return b.Lang
}

func dataFor(b models.Booking, lang string) messageData {
	service := b.Service
	if svc, ok := catalog.Find(b.Service); ok {
		service = svc.Title.Pick(lang)
	}
	return messageData{
		Name:    b.CustomerName,
		Phone:   b.CustomerPhone,
		Service: service,
		Date:    b.Date,
		Time:    b.Time,
	}
}

// Message renders the plain text for ev in the booking's language.
func Message(ev Event) (string, error) {
	lang := templateLang(ev.Kind, ev.Booking)
	src, ok := messageTemplates[ev.Kind]
	if !ok {
		return "", ErrUnknownEvent
	}
	tmpl, err := template.New(string(ev.Kind)).Parse(src.Pick(lang))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, dataFor(ev.Booking, lang)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func Subject(ev Event) string {
	return subjects[ev.Kind].Pick(templateLang(ev.Kind, ev.Booking))
}

func buildEmailHTML(ev Event) (string, error) {
	lang := templateLang(ev.Kind, ev.Booking)
	text, err := Message(ev)
	if err != nil {
		return "", err
	}
	data := emailData{
		messageData: dataFor(ev.Booking, lang),
		Message:     text,
		BookingID:   ev.Booking.ID,
		RTL:         lang == models.LangArabic || lang == models.LangHebrew,
	}
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
