package jobs

import (
	"bytes"
	"html/template"
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "application_received"}}<p>Dear {{.FullName}},</p>
<p>We have received your {{.ApplicationType}} bursary application.</p>
<p>Your reference number is <strong>{{.ReferenceID}}</strong>. Keep it to track your application at <a href="{{.TrackURL}}">{{.TrackURL}}</a>.</p>
<p>County Bursary Office</p>{{end}}

{{define "status_changed"}}<p>Dear {{.FullName}},</p>
<p>The status of your application <strong>{{.ReferenceID}}</strong> is now <strong>{{.StatusLabel}}</strong>.</p>
{{if .Comment}}<p>Reviewer comments: {{.Comment}}</p>{{end}}
<p>Track it at <a href="{{.TrackURL}}">{{.TrackURL}}</a>.</p>
<p>County Bursary Office</p>{{end}}

{{define "contact_received"}}<p>Dear {{.Name}},</p>
<p>Thank you for contacting us about "{{.Subject}}". Our team will get back to you shortly.</p>
<p>County Bursary Office</p>{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
