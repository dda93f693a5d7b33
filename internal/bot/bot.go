// Package bot builds WhatsApp deep links to the kawai bot.
package bot

import (
	"errors"
	"net/url"
	"strings"
)

// ErrBotNumberMissing means no bot number is configured; the link must not be offered.
var ErrBotNumberMissing = errors.New("bot number is not configured (set KAWAI_BOT_NUMBER)")

// DefaultGreeting pre-fills the chat when the caller has no text of its own
const DefaultGreeting = "Halo Kawai!"

// DeepLink returns https://wa.me/<number>?text=<text>.
// Formatting characters in number are dropped.
func DeepLink(number, text string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return "", ErrBotNumberMissing
	}
	if text == "" {
		text = DefaultGreeting
	}
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + digits,
		RawQuery: url.Values{"text": {text}}.Encode(),
	}
	return u.String(), nil
}
