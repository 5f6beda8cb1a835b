package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbGroups(t *testing.T) {
	vg := VerbGroups()

	cases := map[string]string{
		"applied":              "apply",
		"applying for":         "apply",
		"renewing":             "renew",
		"paid":                 "pay",
		"cannot log in":        "sign-in",
		"submitted":            "submit",
		"was looking":          "find",
		"dance":                Unknown,
		"":                     Unknown,
		"updated my details":   "update",
		"checked the guidance": "check",
	}
	for in, want := range cases {
		assert.Equal(t, want, vg.Categorize(in), "input %q", in)
	}
}

func TestThemes(t *testing.T) {
	th := Themes()

	cases := map[string]string{
		"my tax return":         "tax",
		"universal credit":      "benefits",
		"the passport office":   "passport",
		"a driving licence":     "driving",
		"the gibberish zzz":     Unknown,
		"on time":               "deadlines",
		"the phone number":      "contact-details",
		"my state pension":      "pension",
		"self-assessment forms": "tax",
	}
	for in, want := range cases {
		assert.Equal(t, want, th.Categorize(in), "input %q", in)
	}
}

func TestFirstMatchWins(t *testing.T) {
	tbl, err := NewTable([][2]string{
		{"a", `x`},
		{"b", `x+`},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", tbl.Categorize("xxx"))
}

func TestBadPattern(t *testing.T) {
	_, err := NewTable([][2]string{{"a", `([`}})
	assert.Error(t, err)
}
