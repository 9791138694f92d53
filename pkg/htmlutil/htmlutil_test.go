package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div class="content">
		Great <b>phone</b>,<br>fast shipping
		<script>var tracking = 1;</script>
		<style>.x { color: red }</style>
	</div>`))
	require.NoError(t, err)

	text := CleanText(GetText(doc))
	require.Equal(t, "Great phone, fast shipping", text)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "", CleanText("  \n\t "))
	require.Equal(t, "a b", CleanText("a\u0000 \u200b\n b"))
	require.Equal(t, "it's okay", CleanText("it's okay"))
}
