package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// attachmentContentTypes maps artifact extensions to MIME types.
var attachmentContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".html": "text/html",
}

// BuildMessage assembles a multipart MIME email with an HTML body and one
// file attachment, ready for base64url encoding into a Gmail draft.
func BuildMessage(from, to, subject, body, attachmentPath string) ([]byte, error) {
	attachment, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %s: %w", attachmentPath, err)
	}

	filename := filepath.Base(attachmentPath)
	contentType, ok := attachmentContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		contentType = "application/octet-stream"
	}

	var parts bytes.Buffer
	writer := multipart.NewWriter(&parts)

	var msg bytes.Buffer
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", writer.Boundary()),
	}
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n\r\n")

	// Body part.
	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/html; charset="UTF-8"`)
	textHeader.Set("Content-Transfer-Encoding", "base64")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(base64.StdEncoding.EncodeToString([]byte(body)))); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}

	// Attachment part.
	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", fmt.Sprintf("%s; name=%q", contentType, filename))
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}
	if _, err := attachPart.Write([]byte(base64.StdEncoding.EncodeToString(attachment))); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}

	msg.Write(parts.Bytes())
	return msg.Bytes(), nil
}
