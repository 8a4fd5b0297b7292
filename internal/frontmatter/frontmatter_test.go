package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := "# Title\n\nHello\n"

	block, body, had, _ := Split(input)
	require.False(t, had)
	require.Empty(t, block)
	require.Equal(t, input, body)
}

func TestSplit_SplitsBlockAndBody(t *testing.T) {
	input := "---\nTitle: Hello\nTags: go web\n---\n# Body\n"

	block, body, had, _ := Split(input)
	require.True(t, had)
	require.Equal(t, "Title: Hello\nTags: go web\n", block)
	require.Equal(t, "# Body\n", body)
}

func TestSplit_MissingClosingDelimiter_IsNotFrontmatter(t *testing.T) {
	input := "---\nkey: value\n# Title\n"

	block, body, had, _ := Split(input)
	require.False(t, had)
	require.Empty(t, block)
	require.Equal(t, input, body)
}

func TestSplit_CRLF(t *testing.T) {
	input := "---\r\nkey: value\r\n---\r\n# Title\r\n"

	block, body, had, style := Split(input)
	require.True(t, had)
	require.Equal(t, "\r\n", style.Newline)
	require.Equal(t, "key: value\r\n", block)
	require.Equal(t, "# Title\r\n", body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	block, body, had, _ := Split("---\n---\n# Title\n")
	require.True(t, had)
	require.Empty(t, block)
	require.Equal(t, "# Title\n", body)
}

func TestSplit_ClosingDelimiterAtEndOfInput(t *testing.T) {
	block, body, had, _ := Split("---\nkey: value\n---")
	require.True(t, had)
	require.Equal(t, "key: value\n", block)
	require.Empty(t, body)
}

func TestSplit_OnlyFirstBlockIsRecognized(t *testing.T) {
	input := "---\na: 1\n---\nbody\n---\nb: 2\n---\n"

	block, body, had, _ := Split(input)
	require.True(t, had)
	require.Equal(t, "a: 1\n", block)
	require.Equal(t, "body\n---\nb: 2\n---\n", body)
}

func TestSplit_WhitespaceContent(t *testing.T) {
	_, body, had, _ := Split("  \n\t")
	require.False(t, had)
	require.Equal(t, "  \n\t", body)
}

func TestSplit_DelimiterMustBeWholeLine(t *testing.T) {
	input := "----\nkey: value\n----\n"
	_, body, had, _ := Split(input)
	require.False(t, had)
	require.Equal(t, input, body)
}

func TestParseFields(t *testing.T) {
	block := "Title: Hello: World\n  Tags :  a b  \nno colon here\n: empty key\nUrl: http://example.com/x\r\n"

	fields := ParseFields(block)
	require.Equal(t, []Field{
		{Key: "Title", Value: "Hello: World"},
		{Key: "Tags", Value: "a b"},
		{Key: "Url", Value: "http://example.com/x"},
	}, fields)
}

func TestParseFields_Empty(t *testing.T) {
	require.Nil(t, ParseFields("   \n"))
}

func TestJoin_RoundTrip_ReconstructsOriginal(t *testing.T) {
	cases := []string{
		"# Title\n\nHello\n",
		"---\nkey: value\n---\n# Title\n",
		"---\n---\n# Title\n",
		"---\r\nkey: value\r\n---\r\n# Title\r\n",
	}

	for _, input := range cases {
		block, body, had, style := Split(input)
		require.Equal(t, input, Join(block, body, had, style))
	}
}

func TestSerializeFields_RoundTrip(t *testing.T) {
	fields := []Field{
		{Key: "Title", Value: "Hello"},
		{Key: "Tags", Value: "go web"},
		{Key: "Published", Value: "true"},
	}

	block := SerializeFields(fields, Style{})
	doc := Join(block, "body\n", true, Style{Newline: "\n"})

	gotBlock, body, had, _ := Split(doc)
	require.True(t, had)
	require.Equal(t, "body\n", body)
	require.Equal(t, fields, ParseFields(gotBlock))
}
