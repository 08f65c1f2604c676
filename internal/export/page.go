package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/web"
)

const pageTemplateName = "informe.html"

type pageTemplate struct {
	tpl *template.Template
}

func newPageTemplate() (*pageTemplate, error) {
	funcMap := template.FuncMap{
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
	}
	tpl, err := template.New(pageTemplateName).Funcs(funcMap).ParseFS(web.Templates, "templates/reports/"+pageTemplateName)
	if err != nil {
		return nil, err
	}
	return &pageTemplate{tpl: tpl}, nil
}

func (p *pageTemplate) render(table reporting.Table) (string, error) {
	buf := &bytes.Buffer{}
	if err := p.tpl.Execute(buf, table); err != nil {
		return "", err
	}
	return buf.String(), nil
}
