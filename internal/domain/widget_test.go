package domain

import (
	"math/rand/v2"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 16)
	assert.Contains(t, cats, DefaultCategory)

	// Returned slice is a copy.
	cats[0] = "mutated"
	assert.Equal(t, CategoryAttitude, Categories()[0])
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{"exact", "happiness", CategoryHappiness, false},
		{"mixed case and spaces", "  Success ", CategorySuccess, false},
		{"empty", "", "", true},
		{"unknown", "sports", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickColor_NeverRepeatsCurrent(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test source
	current := ""

	for range 500 {
		next := PickColor(current, r)
		assert.NotEqual(t, current, next)
		assert.Contains(t, Palette(), next)
		current = next
	}
}

func TestPickColor_FromErrorColor(t *testing.T) {
	got := PickColor(ErrorColor, nil)
	assert.Contains(t, Palette(), got)
}

func TestPalette(t *testing.T) {
	p := Palette()
	require.Len(t, p, 20)
	assert.NotContains(t, p, ErrorColor)
}

func TestBuildShareTargets(t *testing.T) {
	targets := BuildShareTargets(ShareInput{
		Quote:    "Be happy & free.",
		Author:   "Anon",
		Category: CategoryHappiness,
		PageURL:  "https://quotes.example.com/?a=1&b=2",
	})

	require.Len(t, targets, 3)

	byID := make(map[string]ShareTarget, len(targets))
	for _, st := range targets {
		byID[st.ID] = st
		assert.NotEmpty(t, st.Href)
		assert.Equal(t, "_blank", st.Target)
		assert.NotContains(t, st.Href, " ")

		u, err := url.Parse(st.Href)
		require.NoError(t, err, st.ID)

		q := u.Query()
		body := q.Get("text")
		if st.ID == ShareTargetEmail {
			body = q.Get("body")
		}
		assert.Equal(t, `"Be happy & free." Anon`, body, st.ID)
	}

	tweet := byID[ShareTargetTweet]
	assert.True(t, strings.HasPrefix(tweet.Href, "http://twitter.com/intent/tweet?text="))
	assert.True(t, strings.HasSuffix(tweet.Href, "&hashtags=quote,happiness"))
	assert.True(t, tweet.Popup)
	assert.Equal(t, "fa fa-twitter", tweet.IconClass)

	email := byID[ShareTargetEmail]
	assert.True(t, strings.HasPrefix(email.Href, "mailto:?subject="))
	assert.Contains(t, email.Href, "Check%20out%20this%20inspiring%20quote")
	assert.False(t, email.Popup)

	telegram := byID[ShareTargetTelegram]
	u, err := url.Parse(telegram.Href)
	require.NoError(t, err)
	assert.Equal(t, "https://quotes.example.com/?a=1&b=2", u.Query().Get("url"))
	assert.True(t, telegram.Popup)
}

func TestViewState_Clone(t *testing.T) {
	v := NewViewState(CategoryLife)
	v.ShareTargets = BuildShareTargets(ShareInput{Quote: "q", Author: "a", Category: CategoryLife})

	c := v.Clone()
	c.ShareTargets[0].Href = "changed"

	assert.NotEqual(t, "changed", v.ShareTargets[0].Href)
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.False(t, v.HasQuote())
}

func TestFallbackQuoteRecord(t *testing.T) {
	q := FallbackQuoteRecord()
	assert.Equal(t, "Something went wront. Please, try it later!", q.Text)
	assert.Equal(t, "Customer Service", q.Author)
	assert.False(t, q.IsZero())
	assert.True(t, Quote{}.IsZero())
}

func TestQuote_Complete(t *testing.T) {
	tests := []struct {
		name  string
		quote *Quote
		want  bool
	}{
		{"nil", nil, false},
		{"empty", &Quote{}, false},
		{"text only", &Quote{Text: "x"}, false},
		{"author only", &Quote{Author: "a"}, false},
		{"blank text", &Quote{Text: " \t", Author: "a"}, false},
		{"both", &Quote{Text: "x", Author: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quote.Complete())
		})
	}
}
