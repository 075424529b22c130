package importer

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ReadMessage returns the text to extract from a .txt or .eml file. For
// .eml files the sender and subject are kept in front of the body since
// they often carry the contact's name and company.
func ReadMessage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".eml") {
		return readEmail(f)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// readEmail decodes a MIME message and returns its headers plus the first
// text/plain part. The first text/html part is used only when there is no
// plain text. Attachments are skipped.
func readEmail(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("parse email: %w", err)
	}
	defer mr.Close()

	var plain, html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return "", fmt.Errorf("read email part: %w", err)
		}
		if isAttachment(p.Header) {
			continue
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("read email body: %w", err)
		}
		switch partType(p.Header) {
		case "text/plain":
			if plain == "" {
				plain = string(body)
			}
		case "text/html":
			if html == "" {
				html = string(body)
			}
		}
	}

	text := plain
	if strings.TrimSpace(text) == "" {
		text = html
	}

	var sb strings.Builder
	if from, _ := mr.Header.Text("From"); from != "" {
		fmt.Fprintf(&sb, "From: %s\n", from)
	}
	if subject, _ := mr.Header.Subject(); subject != "" {
		fmt.Fprintf(&sb, "Subject: %s\n", subject)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(text)
	return sb.String(), nil
}

// partType defaults to text/plain when Content-Type is absent.
func partType(h mail.PartHeader) string {
	v := h.Get("Content-Type")
	if v == "" {
		return "text/plain"
	}
	t, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return strings.ToLower(t)
}

func isAttachment(h mail.PartHeader) bool {
	disp, _, _ := mime.ParseMediaType(h.Get("Content-Disposition"))
	return strings.EqualFold(disp, "attachment")
}

func isMessageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".eml":
		return true
	}
	return false
}
