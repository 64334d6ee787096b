package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripRichText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Remington 870, excellent condition", "Remington 870, excellent condition"},
		{"inline tags become spaces", "<div><p>Hello world</p></div>", "Hello world"},
		{"line breaks preserved", "Line one<br>Line two<br/>Line three", "Line one\nLine two\nLine three"},
		{"paragraphs become newlines", "<p>First.</p><p>Second.</p>", "First.\nSecond."},
		{"list items on own lines", "<ul><li>One</li><li>Two</li></ul>", "One\nTwo"},
		{"entities unescaped", "Bolt &amp; scope &ndash; c/w case", "Bolt & scope – c/w case"},
		{"escaped brackets are text, not tags", "Capacity 5 &lt; 10 rounds", "Capacity 5 < 10 rounds"},
		{"runs of blank lines collapse", "<p>A</p><p></p><p></p><p>B</p>", "A\n\nB"},
		{"whitespace collapsed", "Too   many\t\tspaces", "Too many spaces"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripRichText(tc.in))
		})
	}
}
