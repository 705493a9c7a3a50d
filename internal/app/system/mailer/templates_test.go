// internal/app/system/mailer/templates_test.go
package mailer

import (
	"strings"
	"testing"
)

func TestWebsitePublishedEmail(t *testing.T) {
	t.Run("certified website", func(t *testing.T) {
		text, html := WebsitePublishedEmail(WebsitePublishedEmailData{
			AppName:         "Vort",
			ClientName:      "Ada",
			WebsiteName:     "Example Shop",
			BaseURL:         "https://shop.example.com",
			DarkPatternFree: true,
			CertificationID: "A1B2C3D4E5F6",
			DashboardURL:    "https://vort.example.com/dashboard",
		})
		for _, want := range []string{"Ada", "Example Shop", "A1B2C3D4E5F6", "no dark patterns"} {
			if !strings.Contains(text, want) {
				t.Fatalf("text body missing %q:\n%s", want, text)
			}
		}
		if html == "" {
			t.Fatal("html body is empty")
		}
		for _, want := range []string{"Vort", "Example Shop", "A1B2C3D4E5F6", "https://vort.example.com/dashboard"} {
			if !strings.Contains(html, want) {
				t.Fatalf("html body missing %q", want)
			}
		}
	})

	t.Run("patterns found", func(t *testing.T) {
		text, html := WebsitePublishedEmail(WebsitePublishedEmailData{
			AppName:        "Vort",
			ClientName:     "Ada",
			WebsiteName:    "Example Shop",
			BaseURL:        "https://shop.example.com",
			ExpertFeedback: "fake urgency on checkout",
			DashboardURL:   "https://vort.example.com/dashboard",
		})
		if !strings.Contains(text, "identified dark patterns") {
			t.Fatalf("text body missing findings notice:\n%s", text)
		}
		if !strings.Contains(text, "fake urgency on checkout") {
			t.Fatal("text body missing expert feedback")
		}
		if strings.Contains(html, "Certification ID") {
			t.Fatal("html body should not mention a certification")
		}
		if !strings.Contains(html, "fake urgency on checkout") {
			t.Fatal("html body missing expert feedback")
		}
	})
}

func TestExpertAssignedEmail(t *testing.T) {
	text, html := ExpertAssignedEmail(ExpertAssignedEmailData{
		AppName:      "Vort",
		ExpertName:   "Grace",
		WebsiteName:  "Example Shop",
		BaseURL:      "https://shop.example.com",
		IsPrimary:    true,
		DashboardURL: "https://vort.example.com/reviews",
	})
	if !strings.Contains(text, "primary expert") {
		t.Fatalf("text body missing primary note:\n%s", text)
	}
	if !strings.Contains(html, "primary expert") {
		t.Fatal("html body missing primary note")
	}
	if !strings.Contains(html, "https://vort.example.com/reviews") {
		t.Fatal("html body missing dashboard link")
	}

	text, html = ExpertAssignedEmail(ExpertAssignedEmailData{
		AppName:      "Vort",
		ExpertName:   "Grace",
		WebsiteName:  "Example Shop",
		BaseURL:      "https://shop.example.com",
		DashboardURL: "https://vort.example.com/reviews",
	})
	if strings.Contains(text, "primary expert") {
		t.Fatal("text body should not mention primary for a secondary assignment")
	}
	if strings.Contains(html, "primary expert") {
		t.Fatal("html body should not mention primary for a secondary assignment")
	}
}
