package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []RawRow
		lines []int
	}{
		{
			name:  "well formed",
			input: "a,b,c\n1,2,3\n4,5,6\n",
			want:  []RawRow{{"a", "b", "c"}, {"1", "2", "3"}, {"4", "5", "6"}},
			lines: []int{1, 2, 3},
		},
		{
			name:  "embedded newline rejoined",
			input: "Name,Notes\n\"Smith\",\"line1\nline2\"\nJones,x\n",
			want:  []RawRow{{"Name", "Notes"}, {"Smith", "line1\nline2"}, {"Jones", "x"}},
			lines: []int{1, 2, 4},
		},
		{
			name:  "embedded CRLF preserved",
			input: "a,\"x\r\ny\"\r\nb,c\r\n",
			want:  []RawRow{{"a", "x\r\ny"}, {"b", "c"}},
			lines: []int{1, 3},
		},
		{
			name:  "doubled quotes and quoted commas",
			input: `a,"say ""hi"", ok",b` + "\n",
			want:  []RawRow{{"a", `say "hi", ok`, "b"}},
			lines: []int{1},
		},
		{
			name:  "blank lines skipped",
			input: "\n\na,b\n\n   \n1,2\n",
			want:  []RawRow{{"a", "b"}, {"1", "2"}},
			lines: []int{3, 6},
		},
		{
			name:  "no trailing newline",
			input: "a,b\n1,2",
			want:  []RawRow{{"a", "b"}, {"1", "2"}},
			lines: []int{1, 2},
		},
		{
			name:  "empty and trailing fields",
			input: "a,,c\nd,\n",
			want:  []RawRow{{"a", "", "c"}, {"d", ""}},
			lines: []int{1, 2},
		},
		{
			name:  "field spanning three lines",
			input: "x,\"one\ntwo\nthree\",y\nz\n",
			want:  []RawRow{{"x", "one\ntwo\nthree", "y"}, {"z"}},
			lines: []int{1, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewReconstructor(strings.NewReader(tt.input))
			var rows []RawRow
			var lines []int
			for {
				row, line, err := rc.Next()
				if err != nil {
					break
				}
				rows = append(rows, row)
				lines = append(lines, line)
			}
			assert.Equal(t, tt.want, rows)
			assert.Equal(t, tt.lines, lines)
			assert.Empty(t, rc.Warnings())
		})
	}
}

func TestReconstructor_UnterminatedQuote(t *testing.T) {
	input := "a,b\n1,2\n3,\"never closed\n4,5\n"

	rows, warnings, err := ReconstructAll(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []RawRow{{"a", "b"}, {"1", "2"}}, rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUnterminatedField, warnings[0].Kind)
	assert.Equal(t, 3, warnings[0].Line)
}

func TestReconstructor_StrayQuoteDropsRemainder(t *testing.T) {
	input := "part,qty\n5\" tire,1\nwiper,2\n"

	rows, warnings, err := ReconstructAll(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []RawRow{{"part", "qty"}}, rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Line)
	assert.Contains(t, warnings[0].Message, "discarded 2 line(s)")
}

func TestReconstructor_RowCountMatchesLines(t *testing.T) {
	var b strings.Builder
	b.WriteString("h1,h2,h3\n")
	for i := 0; i < 250; i++ {
		b.WriteString("x,y,z\n")
	}

	rows, _, err := ReconstructAll(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, rows, 251)
}

func TestReconstructor_EmptyInput(t *testing.T) {
	rows, warnings, err := ReconstructAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, warnings)
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		in   string
		want RawRow
	}{
		{"", RawRow{""}},
		{"a", RawRow{"a"}},
		{`"a,b"`, RawRow{"a,b"}},
		{`""`, RawRow{""}},
		{`a"b,c`, RawRow{`a"b`, "c"}},
		{`"a"x,b`, RawRow{"ax", "b"}},
	}
	for _, tt := range tests {
		if got := splitFields(tt.in); !assert.Equal(t, tt.want, got) {
			t.Logf("splitFields(%q)", tt.in)
		}
	}
}
