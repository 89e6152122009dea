package domain

import (
	"net/url"
	"strings"
)

// Share target identifiers, also used as anchor element IDs.
const (
	ShareTargetTweet    = "tweet-quote"
	ShareTargetEmail    = "email-quote"
	ShareTargetTelegram = "telegram-quote"
)

// ShareTitle is the email subject used when sharing a quote.
const ShareTitle = "Check out this inspiring quote from Quote Oasis!"

// PopupFeatures is the window.open feature string for share popups.
const PopupFeatures = "left=20,top=20,width=400,height=500,toolbar=1,scrollbars=1,location=0,statusbar=0,menubar=0,resizable=0"

// ShareTarget is one outbound link for distributing the current quote.
type ShareTarget struct {
	ID        string `json:"id"`
	Href      string `json:"href"`
	IconClass string `json:"iconClass"`
	Title     string `json:"title"`
	Target    string `json:"target"`

	// Popup is true when the link should open in a fixed-size window
	// instead of navigating.
	Popup bool `json:"popup"`
}

// ShareInput is everything the share links are derived from.
type ShareInput struct {
	Quote    string
	Author   string
	Category Category
	PageURL  string
}

// BuildShareTargets derives the tweet, email and telegram links for a quote.
func BuildShareTargets(in ShareInput) []ShareTarget {
	post := encodeComponent(`"` + in.Quote + `" ` + in.Author)
	title := encodeComponent(ShareTitle)
	link := encodeComponent(in.PageURL)

	return []ShareTarget{
		{
			ID:        ShareTargetTweet,
			Href:      "http://twitter.com/intent/tweet?text=" + post + "&hashtags=quote," + encodeComponent(in.Category.String()),
			IconClass: "fa fa-twitter",
			Title:     "Tweet this quote!",
			Target:    "_blank",
			Popup:     true,
		},
		{
			ID:        ShareTargetEmail,
			Href:      "mailto:?subject=" + title + "&body=" + post,
			IconClass: "fa fa-envelope",
			Title:     "Send this quote via Email!",
			Target:    "_blank",
		},
		{
			ID:        ShareTargetTelegram,
			Href:      "https://telegram.me/share/url?url=" + link + "&text=" + post,
			IconClass: "fa fa-telegram",
			Title:     "Send this quote via Telegram!",
			Target:    "_blank",
			Popup:     true,
		},
	}
}

// encodeComponent percent-encodes s for use inside a query value.
// Spaces become %20 so the result is valid in mailto: URLs as well.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
