package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"fastfeet/internal/domain"
	"fastfeet/internal/notify"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var subjects = map[domain.TaskName]string{
	domain.TaskNewDelivery:    "New delivery registered",
	domain.TaskCancelDelivery: "Delivery canceled",
}

// Renderer turns notification tasks into messages.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
	loc  *time.Location
}

// NewRenderer parses the embedded templates. Times are shown in loc.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	text, err := texttemplate.ParseFS(templatesFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("mail: parse text templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(templatesFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("mail: parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html, loc: loc}, nil
}

type view struct {
	domain.DeliverySnapshot
	CanceledAt string
}

// Render builds the message for t, addressed to the deliveryman.
func (r *Renderer) Render(t notify.Task) (Message, error) {
	subject, ok := subjects[t.Name]
	if !ok {
		return Message{}, fmt.Errorf("mail: no template for task %q", t.Name)
	}

	v := view{DeliverySnapshot: t.Payload}
	if t.Payload.CanceledAt != nil {
		v.CanceledAt = t.Payload.CanceledAt.In(r.loc).Format("on January 2 at 15:04h")
	}

	var text, html bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, string(t.Name)+".txt.tmpl", v); err != nil {
		return Message{}, fmt.Errorf("mail: render %s text: %w", t.Name, err)
	}
	if err := r.html.ExecuteTemplate(&html, string(t.Name)+".html.tmpl", v); err != nil {
		return Message{}, fmt.Errorf("mail: render %s html: %w", t.Name, err)
	}

	return Message{
		ToName:  t.Payload.Deliveryman.Name,
		ToAddr:  t.Payload.Deliveryman.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
