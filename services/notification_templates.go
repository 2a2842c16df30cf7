package services

import (
	"fmt"
	"html/template"
	"strings"

	"public-complaint-api/models"
	"public-complaint-api/utils"
)

const mailSignature = "Terima kasih telah menggunakan layanan pengaduan Kabupaten Badung."

// MailContent is a rendered notification e-mail.
type MailContent struct {
	Subject string
	HTML    string
}

type mailLine struct {
	Label string
	Value string
}

// renderComplaintMail builds the Indonesian e-mail for a lifecycle event.
func renderComplaintMail(ev ComplaintEvent, recipientName, trackingURL string) MailContent {
	c := ev.Complaint
	var (
		subject string
		intro   string
		outro   string
		details = []mailLine{
			{"Nomor Registrasi", c.RegistrationNumber},
			{"Nama Pemohon", c.ApplicantName},
			{"Layanan", c.ServiceName()},
		}
	)

	switch ev.Kind {
	case models.KindComplaintStatusChanged:
		subject = "Status Pengaduan Anda Telah Diperbarui - #" + c.RegistrationNumber
		intro = "Status pengaduan Anda telah diperbarui."
		details = append(details,
			mailLine{"Status Lama", utils.StatusLabel(ev.OldStatus)},
			mailLine{"Status Baru", utils.StatusLabel(ev.NewStatus)},
		)
	default:
		subject = "Pengaduan Anda Berhasil Diterima - #" + c.RegistrationNumber
		intro = "Terima kasih telah mengirimkan pengaduan Anda."
		outro = "Kami akan memproses pengaduan Anda secepatnya."
		details = append(details,
			mailLine{"Status", "Diterima"},
			mailLine{"Tanggal Pengajuan", utils.FormatIndonesianDateTime(c.CreatedAt)},
		)
	}

	return MailContent{
		Subject: subject,
		HTML:    buildComplaintEmailHTML(subject, recipientName, intro, details, trackingURL, outro),
	}
}

func buildComplaintEmailHTML(subject, recipientName, intro string, details []mailLine, trackingURL, outro string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Bapak/Ibu"
	}

	var rows strings.Builder
	for _, d := range details {
		fmt.Fprintf(&rows,
			`<tr><td style="padding:4px 12px 4px 0;color:#6b7280;">%s</td><td style="padding:4px 0;color:#111827;font-weight:600;">%s</td></tr>`,
			template.HTMLEscapeString(d.Label), template.HTMLEscapeString(d.Value))
	}

	closing := template.HTMLEscapeString(mailSignature)
	if outro != "" {
		closing = template.HTMLEscapeString(outro) + "<br />" + closing
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">Halo %s,</p>
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 8px 0;font-size:16px;font-weight:700;color:#111827;">Detail Pengaduan:</p>
    <table style="border-collapse:collapse;font-size:15px;line-height:1.6;margin-bottom:20px;">%s</table>
    <p style="margin:0 0 20px 0;"><a href="%s" style="display:inline-block;background-color:#1d4ed8;color:#ffffff;text-decoration:none;padding:10px 18px;border-radius:8px;">Lacak Pengaduan</a></p>
    <p style="margin:0;font-size:15px;line-height:1.7;color:#374151;">%s</p>
  </div>
</div>
</body>
</html>`,
		template.HTMLEscapeString(subject),
		template.HTMLEscapeString(name),
		template.HTMLEscapeString(intro),
		rows.String(),
		template.HTMLEscapeString(trackingURL),
		closing,
	)
}
