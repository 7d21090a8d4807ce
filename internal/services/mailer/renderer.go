package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/killallgit/digest-api/internal/services/digests"
)

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"formatDuration": formatDuration,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, Helvetica, Arial, sans-serif; max-width: 680px; margin: 0 auto; color: #1a1a1a;">
  <h1 style="font-size: 22px;">Dein Video-Digest</h1>
  <p style="color: #555;">
    {{.Digest.VideoCount}} Videos &middot; {{formatDuration .Digest.TotalDurationSeconds}} Gesamtl&auml;nge &middot;
    {{.Digest.PeriodStart.Format "02.01.2006"}} &ndash; {{.Digest.PeriodEnd.Format "02.01.2006"}}
  </p>
  {{range .Sections}}
  <h2 style="font-size: 18px; border-bottom: 1px solid #ddd; padding-bottom: 4px;">{{.Category}}</h2>
    {{range .Videos}}
    <div style="margin-bottom: 24px;">
      <h3 style="font-size: 15px; margin-bottom: 2px;"><a href="{{.URL}}" style="color: #0b57d0; text-decoration: none;">{{.Title}}</a></h3>
      <p style="color: #777; font-size: 12px; margin: 0 0 8px;">{{.DurationFormatted}} &middot; {{.PublishedAt.Format "02.01.2006"}}</p>
      {{if .Summary}}
      <p style="font-weight: 600; margin: 0 0 6px;">{{.Summary.CoreMessage}}</p>
      <p style="margin: 0 0 8px;">{{.Summary.DetailedSummary}}</p>
      {{if .Summary.KeyTakeaways}}
      <ul style="margin: 0 0 8px; padding-left: 20px;">
        {{range .Summary.KeyTakeaways}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
      {{if .Summary.Timestamps}}
      <p style="color: #555; font-size: 13px; margin: 0 0 8px;">
        {{range .Summary.Timestamps}}<span style="margin-right: 12px;">{{.FormatOffset}} {{.Description}}</span>{{end}}
      </p>
      {{end}}
      {{if .Summary.ActionItems}}
      <p style="margin: 0 0 4px; font-size: 13px;"><strong>Umsetzen:</strong></p>
      <ul style="margin: 0; padding-left: 20px; font-size: 13px;">
        {{range .Summary.ActionItems}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
      {{end}}
    </div>
    {{end}}
  {{end}}
</body>
</html>`))

// RenderDigest builds the HTML and plain-text bodies plus the subject
// line for a digest email.
func RenderDigest(payload *digests.Payload) (subject, htmlBody, textBody string, err error) {
	subject = fmt.Sprintf("Dein Video-Digest: %d Videos (%s – %s)",
		payload.Digest.VideoCount,
		payload.Digest.PeriodStart.Format("02.01."),
		payload.Digest.PeriodEnd.Format("02.01.2006"))

	var buf strings.Builder
	if err := digestTemplate.Execute(&buf, payload); err != nil {
		return "", "", "", fmt.Errorf("rendering digest email: %w", err)
	}

	return subject, buf.String(), renderText(payload), nil
}

// renderText is the plain-text alternative body
func renderText(payload *digests.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dein Video-Digest\n%d Videos, %s Gesamtlänge\n\n",
		payload.Digest.VideoCount, formatDuration(payload.Digest.TotalDurationSeconds))

	for _, section := range payload.Sections {
		fmt.Fprintf(&b, "== %s ==\n\n", section.Category)
		for _, video := range section.Videos {
			fmt.Fprintf(&b, "%s (%s)\n%s\n", video.Title, video.DurationFormatted(), video.URL())
			if video.Summary != nil {
				fmt.Fprintf(&b, "%s\n", video.Summary.CoreMessage)
				for _, takeaway := range video.Summary.KeyTakeaways {
					fmt.Fprintf(&b, "- %s\n", takeaway)
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatDuration(totalSeconds int) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}
