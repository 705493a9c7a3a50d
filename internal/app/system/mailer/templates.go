// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
)

// WebsitePublishedEmailData contains the data for the notification sent
// to a client when their website review is published.
type WebsitePublishedEmailData struct {
	AppName         string
	ClientName      string
	WebsiteName     string
	BaseURL         string
	DarkPatternFree bool
	CertificationID string // set only when DarkPatternFree
	ExpertFeedback  string // optional summary from the reviewing experts
	DashboardURL    string
}

// WebsitePublishedEmail generates both plain text and HTML versions of
// the publish notification.
func WebsitePublishedEmail(data WebsitePublishedEmailData) (textBody, htmlBody string) {
	// Plain text version
	textBody = "Hello " + data.ClientName + ",\n\n" +
		"Your website " + data.WebsiteName + " (" + data.BaseURL + ") has been successfully published.\n\n"
	if data.DarkPatternFree {
		textBody += "Our experts found no dark patterns. Congratulations!\n"
		if data.CertificationID != "" {
			textBody += "Your certification ID is: " + data.CertificationID + "\n"
		}
		textBody += "\n"
	} else {
		textBody += "Our experts identified dark patterns during the review. " +
			"Log in to see the detailed findings.\n\n"
	}
	if data.ExpertFeedback != "" {
		textBody += "Expert feedback:\n" + data.ExpertFeedback + "\n\n"
	}
	textBody += "View the full report:\n" + data.DashboardURL + "\n\n" +
		"The " + data.AppName + " team"

	// HTML version
	var buf bytes.Buffer
	_ = websitePublishedHTMLTmpl.Execute(&buf, data)
	htmlBody = buf.String()

	return textBody, htmlBody
}

// ExpertAssignedEmailData contains the data for the notification sent
// to an expert when they are assigned to review a website.
type ExpertAssignedEmailData struct {
	AppName      string
	ExpertName   string
	WebsiteName  string
	BaseURL      string
	IsPrimary    bool
	DashboardURL string
}

// ExpertAssignedEmail generates both plain text and HTML versions of
// the assignment notification.
func ExpertAssignedEmail(data ExpertAssignedEmailData) (textBody, htmlBody string) {
	// Plain text version
	textBody = "Hello " + data.ExpertName + ",\n\n" +
		"You have been assigned to review " + data.WebsiteName + " (" + data.BaseURL + ")"
	if data.IsPrimary {
		textBody += " as the primary expert"
	}
	textBody += ".\n\n" +
		"Start your review:\n" + data.DashboardURL + "\n\n" +
		"The " + data.AppName + " team"

	// HTML version
	var buf bytes.Buffer
	_ = expertAssignedHTMLTmpl.Execute(&buf, data)
	htmlBody = buf.String()

	return textBody, htmlBody
}

var websitePublishedHTMLTmpl = template.Must(template.New("website_published").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Website Published</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #e4e4e7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #18181b;">{{.AppName}}</h1>
            </td>
          </tr>
          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <!-- Status Icon -->
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center" style="padding: 0 0 16px 0;">
                    {{if .DarkPatternFree}}
                    <div style="display: inline-block; width: 48px; height: 48px; background-color: #dcfce7; border-radius: 50%; text-align: center; line-height: 48px; font-size: 24px;">&#9989;</div>
                    {{else}}
                    <div style="display: inline-block; width: 48px; height: 48px; background-color: #fef3c7; border-radius: 50%; text-align: center; line-height: 48px; font-size: 24px;">&#9888;</div>
                    {{end}}
                  </td>
                </tr>
              </table>
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b; text-align: center;">Review Published</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Hello {{.ClientName}},
              </p>
              <p style="margin: 0 0 24px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Your website <strong>{{.WebsiteName}}</strong> ({{.BaseURL}}) has been successfully published.
              </p>
              {{if .DarkPatternFree}}
              <div style="padding: 16px; background-color: #f0fdf4; border-radius: 6px; border-left: 4px solid #22c55e; margin-bottom: 24px;">
                <p style="margin: 0 0 4px 0; font-size: 14px; line-height: 1.6; color: #166534;">
                  <strong>No dark patterns found.</strong> Congratulations!
                </p>
                {{if .CertificationID}}
                <p style="margin: 0; font-size: 14px; color: #166534;">
                  Certification ID: <strong>{{.CertificationID}}</strong>
                </p>
                {{end}}
              </div>
              {{else}}
              <div style="padding: 16px; background-color: #fffbeb; border-radius: 6px; border-left: 4px solid #f59e0b; margin-bottom: 24px;">
                <p style="margin: 0; font-size: 14px; line-height: 1.6; color: #92400e;">
                  Our experts identified dark patterns during the review. Log in to see the detailed findings.
                </p>
              </div>
              {{end}}
              {{if .ExpertFeedback}}
              <div style="padding: 16px; background-color: #f4f4f5; border-radius: 6px; margin-bottom: 24px;">
                <p style="margin: 0 0 4px 0; font-size: 12px; font-weight: 600; color: #52525b; text-transform: uppercase;">Expert Feedback</p>
                <p style="margin: 0; font-size: 14px; line-height: 1.6; color: #52525b;">{{.ExpertFeedback}}</p>
              </div>
              {{end}}
              <!-- Button -->
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center" style="padding: 0 0 24px 0;">
                    <a href="{{.DashboardURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 15px; font-weight: 600; border-radius: 6px;">View Report</a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #fafafa; border-top: 1px solid #e4e4e7; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #a1a1aa; text-align: center;">
                This is an automated notification from {{.AppName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

var expertAssignedHTMLTmpl = template.Must(template.New("expert_assigned").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Review Assignment</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #e4e4e7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #18181b;">{{.AppName}}</h1>
            </td>
          </tr>
          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b; text-align: center;">New Review Assignment</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Hello {{.ExpertName}},
              </p>
              <p style="margin: 0 0 24px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                You have been assigned to review <strong>{{.WebsiteName}}</strong> ({{.BaseURL}}){{if .IsPrimary}} as the <strong>primary expert</strong>{{end}}.
              </p>
              <!-- Button -->
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center" style="padding: 0 0 24px 0;">
                    <a href="{{.DashboardURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 15px; font-weight: 600; border-radius: 6px;">Start Review</a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #fafafa; border-top: 1px solid #e4e4e7; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #a1a1aa; text-align: center;">
                This is an automated notification from {{.AppName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
