package fieldmask_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/muhammadluth/fieldmask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeOf(t *testing.T, from, to int) *fieldmask.Range {
	t.Helper()
	r, err := fieldmask.NewRange(from, to)
	require.NoError(t, err)
	return &r
}

func TestMaskFull(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Value", "inputValue", "**********"},
		{"SingleChar", "x", "*"},
		{"Unicode", "пароль", "******"},
		{"Empty", "", ""},
		{"Blank", "   ", "   "},
		{"InnerSpaces", "a b", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fieldmask.MaskFull(tt.input))
		})
	}

	t.Run("CustomChar", func(t *testing.T) {
		assert.Equal(t, "$$$$$$$$$$", fieldmask.MaskFullWith("inputValue", '$'))
	})

	t.Run("PreservesLength", func(t *testing.T) {
		for _, s := range []string{"a", "secret123", "john.doe@example.com", "日本語テキスト"} {
			got := fieldmask.MaskFull(s)
			assert.Equal(t, utf8.RuneCountInString(s), utf8.RuneCountInString(got))
			assert.Equal(t, "", strings.Trim(got, "*"))
		}
	})
}

func TestMaskPartial(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		rng      *fieldmask.Range
		expected string
	}{
		{"Phone", "+79999999999", rangeOf(t, 5, 10), "+7999*****99"},
		{"Secret", "secret123", rangeOf(t, 2, 6), "se****123"},
		{"RangePastEnd", "secret", rangeOf(t, 2, 100), "se****"},
		{"NegativeFrom", "secret", rangeOf(t, -3, 2), "**cret"},
		{"RangeAfterEnd", "abc", rangeOf(t, 10, 20), "abc"},
		{"EmptyRange", "secret", rangeOf(t, 2, 2), "secret"},
		{"Unicode", "пароль", rangeOf(t, 1, 3), "п**оль"},
		{"NilRange", "secret", nil, "secret"},
		{"Empty", "", rangeOf(t, 0, 3), ""},
		{"Blank", "  ", rangeOf(t, 0, 3), "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fieldmask.MaskPartial(tt.input, tt.rng))
		})
	}

	t.Run("CustomChar", func(t *testing.T) {
		assert.Equal(t, "se####123", fieldmask.MaskPartialWith("secret123", rangeOf(t, 2, 6), '#'))
	})

	t.Run("OnlyRangeChanges", func(t *testing.T) {
		inputs := []string{"a", "abcdef", "0123456789abcdef"}
		ranges := [][2]int{{0, 0}, {0, 3}, {2, 5}, {-4, 4}, {5, 50}, {30, 40}}
		for _, s := range inputs {
			for _, b := range ranges {
				got := []rune(fieldmask.MaskPartial(s, rangeOf(t, b[0], b[1])))
				in := []rune(s)
				require.Len(t, got, len(in))
				start, end := max(0, b[0]), min(len(in), b[1])
				for i := range in {
					if i >= start && i < end {
						assert.Equal(t, '*', got[i], "%q %v index %d", s, b, i)
					} else {
						assert.Equal(t, in[i], got[i], "%q %v index %d", s, b, i)
					}
				}
			}
		}
	})
}

func TestMaskJSON(t *testing.T) {
	full := fieldmask.ModeFull
	partial := fieldmask.ModePartial

	tests := []struct {
		name     string
		input    string
		policy   fieldmask.Policy
		rng      *fieldmask.Range
		expected string
	}{
		{
			name:     "FlatFull",
			input:    `{"name":"John","age":30}`,
			policy:   fieldmask.Policy{"name": full},
			expected: `{"name":"****","age":30}`,
		},
		{
			name:     "NestedDepthTwo",
			input:    `{"user":{"profile":{"email":"john@example.com","city":"Springfield"}}}`,
			policy:   fieldmask.Policy{"email": full},
			expected: `{"user":{"profile":{"email":"****************","city":"Springfield"}}}`,
		},
		{
			name:     "ArrayInheritsMode",
			input:    `{"tags":["secret1","secret2"]}`,
			policy:   fieldmask.Policy{"tags": partial},
			rng:      rangeOf(t, 2, 5),
			expected: `{"tags":["se***t1","se***t2"]}`,
		},
		{
			name:     "NestedArraysInheritMode",
			input:    `{"codes":[["ab12","cd34"],"ef56",7]}`,
			policy:   fieldmask.Policy{"codes": full},
			expected: `{"codes":[["****","****"],"****","*"]}`,
		},
		{
			name:     "UnlistedArrayWalksObjects",
			input:    `{"orders":[{"card":"4111111111111111","id":1}],"ids":[1,2]}`,
			policy:   fieldmask.Policy{"card": full},
			expected: `{"orders":[{"card":"****************","id":1}],"ids":[1,2]}`,
		},
		{
			name:     "ListedKeyWithObjectValue",
			input:    `{"secret":{"secret":"x1","other":"y"}}`,
			policy:   fieldmask.Policy{"secret": full},
			expected: `{"secret":{"secret":"**","other":"y"}}`,
		},
		{
			name:     "MaskedScalarBecomesString",
			input:    `{"pin":1234,"active":true}`,
			policy:   fieldmask.Policy{"pin": full},
			expected: `{"pin":"****","active":true}`,
		},
		{
			name:     "UnchangedScalarStaysScalar",
			input:    `{"age":30}`,
			policy:   fieldmask.Policy{"age": partial},
			expected: `{"age":30}`,
		},
		{
			name:     "ReformatsWhitespace",
			input:    "{\n  \"password\" : \"hunter2\",\n  \"id\" : 7\n}",
			policy:   fieldmask.Policy{"password": full},
			expected: `{"password":"*******","id":7}`,
		},
		{
			name:     "MalformedReturnedUnchanged",
			input:    `{"name":"John"`,
			policy:   fieldmask.Policy{"name": full},
			expected: `{"name":"John"`,
		},
		{
			name:     "NotJSON",
			input:    `not a json`,
			policy:   fieldmask.Policy{"name": full},
			expected: `not a json`,
		},
		{
			name:     "ArrayRootUnchanged",
			input:    `[{"name":"John"}]`,
			policy:   fieldmask.Policy{"name": full},
			expected: `[{"name":"John"}]`,
		},
		{
			name:     "Empty",
			input:    ``,
			policy:   fieldmask.Policy{"name": full},
			expected: ``,
		},
		{
			name:     "Blank",
			input:    "  \t",
			policy:   fieldmask.Policy{"name": full},
			expected: "  \t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fieldmask.MaskJSON(tt.input, tt.policy, tt.rng))
		})
	}

	t.Run("EmptyPolicyRoundTrip", func(t *testing.T) {
		doc := `{"id":12345,"name":"John Doe","address":{"street":"123 Main St","zip":123456},"phones":["+1234567890"],"orders":[{"id":1,"price":25.99}],"ok":true,"none":null}`
		assert.Equal(t, doc, fieldmask.MaskJSON(doc, nil, nil))
		assert.Equal(t, doc, fieldmask.MaskJSON(doc, fieldmask.Policy{}, rangeOf(t, 0, 3)))
	})

	t.Run("Document", func(t *testing.T) {
		data, err := os.ReadFile("testdata/profile.json")
		require.NoError(t, err)

		policy := fieldmask.Policy{
			"testName":       full,
			"testEmail":      full,
			"testPhone":      full,
			"testPassportId": partial,
			"testArray":      partial,
		}
		got := fieldmask.MaskJSONBytes(data, policy, rangeOf(t, 2, 6))

		expected := `{"testName":"********","testEmail":"********************","testPhone":"***********",` +
			`"testPassportId":"42****8689","testArray":["12****7","12****7890"],` +
			`"nested":{"testName":"********","city":"Springfield"},"active":true}`
		assert.Equal(t, expected, got)
	})

	t.Run("Concurrent", func(t *testing.T) {
		doc := `{"user":{"password":"hunter2","tags":["a1","b2"]}}`
		policy := fieldmask.Policy{"password": full, "tags": full}
		want := `{"user":{"password":"*******","tags":["**","**"]}}`

		var wg sync.WaitGroup
		results := make([]string, 32)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = fieldmask.MaskJSON(doc, policy, nil)
			}()
		}
		wg.Wait()
		for _, got := range results {
			assert.Equal(t, want, got)
		}
	})
}

func TestMaskJSONEscapes(t *testing.T) {
	full := fieldmask.ModeFull
	partial := fieldmask.ModePartial

	tests := []struct {
		name     string
		input    string
		mode     fieldmask.Mode
		rng      *fieldmask.Range
		expected string
	}{
		{"EscapedBackslashAtEnd", `{"p":"x\\"}`, partial, rangeOf(t, 1, 2), `{"p":"x*"}`},
		{"NewlineEscape", `{"p":"a\nb"}`, partial, rangeOf(t, 1, 2), `{"p":"a*b"}`},
		{"RangeBeforeEscape", `{"p":"ab\tc"}`, partial, rangeOf(t, 0, 2), `{"p":"**\tc"}`},
		{"UnicodeEscape", `{"p":"caf\u00e9!"}`, partial, rangeOf(t, 3, 4), `{"p":"caf*!"}`},
		{"FullCountsEscapesOnce", `{"p":"\u00e9t\u00e9"}`, full, nil, `{"p":"***"}`},
		{"FullEscapedBackslash", `{"p":"a\\b"}`, full, nil, `{"p":"***"}`},
		{"ArrayElements", `{"p":["x\\","\/y"]}`, partial, rangeOf(t, 0, 1), `{"p":["*\\","*y"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, json.Valid([]byte(tt.input)), "input %s", tt.input)

			got := fieldmask.MaskJSON(tt.input, fieldmask.Policy{"p": tt.mode}, tt.rng)
			assert.Equal(t, tt.expected, got)
			assert.True(t, json.Valid([]byte(got)), "output %s", got)
		})
	}
}

func TestMaskJSONSkipsStrayClosingBraces(t *testing.T) {
	// Text between members is skipped while looking for the next key, so a
	// stray brace does not make the document malformed.
	got := fieldmask.MaskJSON(`{"a":1},"password":"hunter2"}`, fieldmask.Policy{"password": fieldmask.ModeFull}, nil)
	assert.Equal(t, `{"a":1,"password":"*******"}`, got)
}

func TestMaskerOptions(t *testing.T) {
	t.Run("MaskChar", func(t *testing.T) {
		m := fieldmask.New(fieldmask.WithMaskChar('#'))
		assert.Equal(t, "######", m.MaskFull("secret"))
		assert.Equal(t, `{"pin":"####"}`, m.MaskJSON(`{"pin":1234}`, fieldmask.Policy{"pin": fieldmask.ModeFull}, nil))
	})

	t.Run("DegradeIsLoggedWithoutInput", func(t *testing.T) {
		buf := &bytes.Buffer{}
		m := fieldmask.New(
			fieldmask.WithServiceName("masking-test"),
			fieldmask.WithOutput(buf),
			fieldmask.WithDebug(true),
		)
		input := `{"password":"hunter2"`
		assert.Equal(t, input, m.MaskJSON(input, fieldmask.Policy{"password": fieldmask.ModeFull}, nil))

		out := buf.String()
		assert.Contains(t, out, "json left unmasked")
		assert.Contains(t, out, `"application_name":"masking-test"`)
		assert.NotContains(t, out, "hunter2")
	})

	t.Run("DebugDisabled", func(t *testing.T) {
		buf := &bytes.Buffer{}
		m := fieldmask.New(fieldmask.WithOutput(buf))
		m.MaskJSON(`{`, nil, nil)
		assert.Empty(t, buf.String())
	})
}

func TestDefaultMasker(t *testing.T) {
	prev := fieldmask.Default()
	t.Cleanup(func() { fieldmask.SetDefault(prev) })

	fieldmask.SetDefault(nil)
	assert.Same(t, prev, fieldmask.Default())

	fieldmask.SetDefault(fieldmask.New(fieldmask.WithMaskChar('x')))
	assert.Equal(t, "xxxx", fieldmask.MaskFull("abcd"))
}

func TestMaskValue(t *testing.T) {
	root, err := fieldmask.Parse(`{"items":[{"token":"abc"}],"token":"def"}`)
	require.NoError(t, err)

	policy := fieldmask.Policy{"token": fieldmask.ModeFull}
	got := fieldmask.MaskValue(root, policy, nil)
	assert.Equal(t, `{"items":[{"token":"***"}],"token":"***"}`, fieldmask.Marshal(got))

	inner := fieldmask.NewObject()
	inner.Set("token", fieldmask.String("xyz"))
	arr := fieldmask.MaskValue(fieldmask.Array{inner, fieldmask.String("loose")}, policy, nil)
	assert.Equal(t, `[{"token":"***"},"loose"]`, fieldmask.Marshal(arr))

	assert.Equal(t, fieldmask.String("top"), fieldmask.MaskValue(fieldmask.String("top"), policy, nil))
}

func TestMaskHeaders(t *testing.T) {
	headers := map[string][]string{
		"Authorization": {"Bearer token123"},
		"Content-Type":  {"application/json"},
		"X-Api-Key":     {"sk_live_123456"},
		"Cookie":        {},
	}
	policy := fieldmask.Policy{
		"authorization": fieldmask.ModeFull,
		"x-api-key":     fieldmask.ModePartial,
		"Cookie":        fieldmask.ModeFull,
	}

	got := fieldmask.MaskHeaders(headers, policy, rangeOf(t, 3, 8))

	assert.Equal(t, []string{"***************"}, got["Authorization"])
	assert.Equal(t, []string{"sk_*****123456"}, got["X-Api-Key"])
	assert.Equal(t, []string{"application/json"}, got["Content-Type"])
	assert.Empty(t, got["Cookie"])
	assert.Equal(t, []string{"Bearer token123"}, headers["Authorization"], "input must not be modified")

	assert.NotNil(t, fieldmask.MaskHeaders(nil, policy, nil))
}
