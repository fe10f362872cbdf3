package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForHTML(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{name: "empty", s: "", want: ""},
		{name: "plain", s: "alice@example.com", want: "alice@example.com"},
		{name: "markup", s: `<b class="x">Bob's</b>`, want: "&lt;b class=&quot;x&quot;&gt;Bob&#39;s&lt;&#x2f;b&gt;"},
		{name: "ampersand", s: "Tom & Jerry", want: "Tom &amp; Jerry"},
		{name: "already encoded", s: "&lt;", want: "&amp;lt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForHTML(tt.s))
		})
	}
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{name: "no entities", s: "Team 1", want: "Team 1"},
		{name: "encoded", s: "&lt;script&gt;alert(&#39;x&#39;)&lt;&#x2f;script&gt;", want: "<script>alert('x')</script>"},
		{name: "unknown entity", s: "a &bogus; b", want: "a &bogus; b"},
		{name: "dangling ampersand", s: "a & b &", want: "a & b &"},
		{name: "unterminated numeric", s: "&#", want: "&#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recover(tt.s))
		})
	}
}

func TestRecover_roundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<>&\"'/",
		"&amp;",
		"&lt",
		"&&&;;;",
		"&#39;&#x2f;",
		"ünïcødé ✓ <tag attr='v'>",
		"line1\nline2\r\n\tend",
		"Team <A> & 'B'/\"C\"",
	}
	for _, s := range inputs {
		assert.Equal(t, s, Recover(ForHTML(s)), "round trip of %q", s)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Alice B Carol", Name("  Alice \t B\n  Carol "))
	assert.Equal(t, "", Name("   "))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", Email("\talice@example.com "))
}

func TestTextField(t *testing.T) {
	assert.Equal(t, "a\nb\nc", TextField(" a\r\nb\rc \n"))
}
