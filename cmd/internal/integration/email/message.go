package email

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed all:templates
var templateFS embed.FS

var (
	textTemplates map[string]*texttmpl.Template
	htmlTemplates map[string]*htmltmpl.Template
	parseErr      error
	parseOnce     sync.Once
)

const (
	templateApproved = "consultation_approved"
	templateRejected = "consultation_rejected"
)

// Message is a single templated email. Render fills TextContent and
// HTMLContent from TemplateName and TemplateData.
type Message struct {
	To           mail.Address
	Subject      string
	TemplateName string
	TemplateData any
	TextContent  string
	HTMLContent  string
}

type contextData struct {
	FrontendBaseURL string
	Data            any
}

func (m *Message) Render(frontendBaseURL string) error {
	parseOnce.Do(parseTemplates)
	if parseErr != nil {
		return parseErr
	}

	txt, ok := textTemplates[m.TemplateName]
	if !ok {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}
	data := contextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	var buff bytes.Buffer
	if err := txt.Execute(&buff, data); err != nil {
		return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
	}
	m.TextContent = buff.String()

	buff.Reset()
	if err := htmlTemplates[m.TemplateName].Execute(&buff, data); err != nil {
		return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *Message) HasRecipient() bool { return m.To.Address != "" }
func (m *Message) HasContent() bool   { return m.TextContent != "" || m.HTMLContent != "" }

func parseTemplates() {
	textTemplates = make(map[string]*texttmpl.Template)
	htmlTemplates = make(map[string]*htmltmpl.Template)

	for _, name := range []string{templateApproved, templateRejected} {
		txt, err := texttmpl.ParseFS(templateFS, "templates/_base.txt", "templates/"+name+".txt")
		if err != nil {
			parseErr = errors.Wrapf(err, "parsing %s.txt", name)
			return
		}
		html, err := htmltmpl.ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			parseErr = errors.Wrapf(err, "parsing %s.gohtml", name)
			return
		}
		textTemplates[name] = txt.Option("missingkey=error")
		htmlTemplates[name] = html.Option("missingkey=error")
	}
}
