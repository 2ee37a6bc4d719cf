// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

var resetHTML = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <p>Hello,</p>
  <p>We received a request to reset the password for {{.Email}}.</p>
  <p><a href="{{.Link}}" style="color: #b5838d;">Reset your password</a></p>
  <p>This link expires in {{.TTL}}. If you did not ask for a reset, you can ignore this email.</p>
</body>
</html>
`))

// ResetLink builds the password reset URL embedding the token and email.
func ResetLink(siteURL, email, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return siteURL + "/reset-password?" + q.Encode()
}

// ResetEmail builds the password reset message.
func ResetEmail(siteURL, email, token string, ttl time.Duration) (Message, error) {
	link := ResetLink(siteURL, email, token)

	var html bytes.Buffer
	err := resetHTML.Execute(&html, struct {
		Email string
		Link  string
		TTL   string
	}{email, link, humanDuration(ttl)})
	if err != nil {
		return Message{}, fmt.Errorf("rendering reset email: %w", err)
	}

	text := fmt.Sprintf("We received a request to reset the password for %s.\n\n"+
		"Open this link to choose a new password:\n%s\n\n"+
		"This link expires in %s. If you did not ask for a reset, you can ignore this email.\n",
		email, link, humanDuration(ttl))

	return Message{
		To:       email,
		Subject:  "Reset your password",
		HTMLBody: html.String(),
		TextBody: text,
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%d days", int(d/(24*time.Hour)))
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		return d.String()
	}
}
