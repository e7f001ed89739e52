package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Buyer 1 First Name":   "buyer_1_first_name",
		"buyer1FirstName":      "buyer_1_first_name",
		"BUYER-1 FIRST_NAME":   "buyer_1_first_name",
		"  Project  ":          "project",
		"COEDate":              "coe_date",
		"Close-of-Escrow Date": "close_of_escrow_date",
		"Base Price ($)":       "base_price",
		"Unit #":               "unit",
		"status_numeric":       "status_numeric",
		"Deposit2Amount":       "deposit_2_amount",
		"Ñame":                 "ñame",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestParseCSV(t *testing.T) {
	data := "Project,Unit Number,Buyer Name,Base Price\n" +
		"Vista,8,\"Lee, Ann\",\"$640,000\"\n" +
		",,,\n" +
		"SoMi Hayward,214,Bo Park\n" +
		"Vista,9,Cy,1,extra\n"

	res, err := Parse([]byte(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, []string{"project", "unit_number", "buyer_name", "base_price"}, res.Headers)
	require.Len(t, res.Rows, 3)

	assert.Equal(t, 2, res.Rows[0].Line)
	assert.Equal(t, "Lee, Ann", res.Rows[0].Values["buyer_name"])
	assert.Equal(t, "$640,000", res.Rows[0].Values["base_price"])

	assert.Equal(t, 4, res.Rows[1].Line)
	assert.Equal(t, "", res.Rows[1].Values["base_price"])
	assert.Equal(t, "1", res.Rows[2].Values["base_price"])

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, 4, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "padding")
	assert.Equal(t, 5, res.Warnings[1].Line)
	assert.Contains(t, res.Warnings[1].Message, "truncating")
}

func TestParseDetectsTabs(t *testing.T) {
	res, err := Parse([]byte("Project\tUnit\nVista\t8\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "8", res.Rows[0].Values["unit"])
}

func TestParseDuplicateAndBlankHeaders(t *testing.T) {
	res, err := Parse([]byte("Phone,phone,\n1,2,3\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "phone_2", "column_3"}, res.Headers)
	assert.Len(t, res.Warnings, 2)
}

func TestParseEncodings(t *testing.T) {
	text := "Project,Buyer\nVista,Zoë\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)
	res, err := Parse([]byte(utf16), Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf-16le", res.Encoding)
	assert.Equal(t, "Zoë", res.Rows[0].Values["buyer"])

	cp1252, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)
	res, err = Parse([]byte(cp1252), Options{})
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", res.Encoding)
	assert.Equal(t, "Zoë", res.Rows[0].Values["buyer"])

	res, err = Parse(append([]byte{0xEF, 0xBB, 0xBF}, text...), Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf-8-bom", res.Encoding)
	assert.Equal(t, []string{"project", "buyer"}, res.Headers)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := Parse(nil, Options{})
	assert.Error(t, err)
	_, err = Parse([]byte("Project,Unit\n"), Options{})
	assert.Error(t, err)
}

func TestDecodeObjects(t *testing.T) {
	rows, err := DecodeObjects(strings.NewReader(`  [{"projectName":"Fusion","unit":12},{"projectName":"Vista"}]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 12.0, rows[0]["unit"])

	rows, err = DecodeObjects(strings.NewReader("{\"a\":1}\n{\"a\":2}\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = DecodeObjects(strings.NewReader("   "))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = DecodeObjects(strings.NewReader("{\"a\":1}\n{oops"))
	assert.Error(t, err)
}
