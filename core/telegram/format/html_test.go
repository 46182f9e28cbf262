package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLHelpers(t *testing.T) {
	assert.Equal(t, "<b>A &amp; B</b>", Bold("A & B"))
	assert.Equal(t, "<i>&lt;x&gt;</i>", Italic("<x>"))
	assert.Equal(t, "<code>a</code>", Code("a"))
	assert.Equal(t, `<pre><code class="language-css">a{}</code></pre>`, Pre("a{}", "css"))
	assert.Equal(t, "• one\n• two &amp; three", Bullets([]string{"one", "two & three"}))
	assert.Equal(t, "head\n\ntail", Join("head", "  ", "tail"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "привет", Truncate("привет", 6))
	assert.Equal(t, "при…", Truncate("привет", 4))
	assert.Equal(t, "abc", Truncate("abc", 0))
}
