package naming

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan:
// 1. Known conversions, including digits and acronyms
// 2. Round trip of randomly generated capitalized word sequences
// 3. Words/CamelCase helpers on edge inputs

func TestLowerUnderscore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Foo", "foo"},
		{"two words", "FooBar", "foo_bar"},
		{"digits stay with previous word", "MultiWord123Name", "multi_word123_name"},
		{"trailing digits", "Point3", "point3"},
		{"acronym prefix", "HTTPHeader", "http_header"},
		{"acronym suffix", "GetIDL", "get_idl"},
		{"already lower", "foo", "foo"},
		{"empty", "", ""},
		{"service request", "AddTwoInts_Request", "add_two_ints__request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LowerUnderscore(tt.in))
		})
	}
}

func TestLowerUnderscore_RoundTrip(t *testing.T) {
	// Test: capitalized word concatenations survive segmentation
	rng := rand.New(rand.NewSource(42))

	for i := range 200 {
		name := randomInterfaceName(rng)
		t.Run(fmt.Sprintf("name_%d_%s", i, name), func(t *testing.T) {
			stem := LowerUnderscore(name)

			assert.Equal(t, strings.ToLower(stem), stem)
			assert.NotContains(t, stem, "__")
			assert.Equal(t, name, CamelCase(stem))
		})
	}
}

func TestLowerUnderscore_Deterministic(t *testing.T) {
	for _, name := range []string{"Foo", "MultiWord123Name", "ABCDef"} {
		assert.Equal(t, LowerUnderscore(name), LowerUnderscore(name))
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"multi", "word123", "name"}, Words("MultiWord123Name"))
	assert.Nil(t, Words(""))
}

func TestCamelCase(t *testing.T) {
	assert.Equal(t, "MultiWord123Name", CamelCase("multi_word123_name"))
	assert.Equal(t, "Foo", CamelCase("foo"))
	assert.Equal(t, "", CamelCase(""))
	require.Equal(t, "FooBar", CamelCase("foo__bar"))
}

// randomInterfaceName builds a name from one to four capitalized words,
// each optionally followed by digits.
func randomInterfaceName(rng *rand.Rand) string {
	const lower = "abcdefghijklmnopqrstuvwxyz"
	const upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"

	var sb strings.Builder
	words := rng.Intn(4) + 1
	for range words {
		sb.WriteByte(upper[rng.Intn(len(upper))])
		for range rng.Intn(6) + 1 {
			sb.WriteByte(lower[rng.Intn(len(lower))])
		}
		if rng.Intn(3) == 0 {
			for range rng.Intn(3) + 1 {
				sb.WriteByte(digits[rng.Intn(len(digits))])
			}
		}
	}
	return sb.String()
}
