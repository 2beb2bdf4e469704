package tabular

import (
	"testing"

	"medibot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizesHeadersAndCells(t *testing.T) {
	text := " Symptom 1 ,Symptom   2,Prognosis\r\n Fever , COUGH ,Flu\r\nrash,,Allergy\r\n"

	table, err := Parse(text, ",")
	require.NoError(t, err)

	assert.Equal(t, []string{"symptom_1", "symptom_2", "prognosis"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"symptom_1": "fever", "symptom_2": "cough", "prognosis": "flu"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1].Get("symptom_2"))
	assert.Equal(t, "allergy", table.Rows[1].Get("prognosis"))
}

func TestParseShortRowPadsMissingColumns(t *testing.T) {
	table, err := Parse("symptom_1,symptom_2,disease\nfever\n", ",")
	require.NoError(t, err)

	row := table.Rows[0]
	assert.Equal(t, "fever", row.Get("symptom_1"))
	assert.Equal(t, "", row.Get("symptom_2"))
	assert.Equal(t, "", row.Get("disease"))
	assert.Len(t, row, 3)
}

func TestParseIgnoresExtraCells(t *testing.T) {
	table, err := Parse("symptom_1,disease\nfever,flu,extra\n", ",")
	require.NoError(t, err)
	assert.Len(t, table.Rows[0], 2)
}

func TestParseCustomDelimiter(t *testing.T) {
	table, err := Parse("symptom_1;prognosis\nfever;flu", ";")
	require.NoError(t, err)
	assert.Equal(t, "flu", table.Rows[0].Get("prognosis"))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\r\n  "},
		{"header only", "symptom_1,prognosis\n"},
		{"header and blank lines", "symptom_1,prognosis\n\n ,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, ",")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeMalformedInput))
		})
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	table, err := Parse("symptom_1,prognosis\nfever,flu\n\nrash,allergy", ",")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestSymptomColumnsAndTarget(t *testing.T) {
	table, err := Parse("id,symptom_1,symptom_2,disease,prognosis\n1,a,b,c,d", ",")
	require.NoError(t, err)

	assert.Equal(t, []string{"symptom_1", "symptom_2"}, table.SymptomColumns())
	target, err := table.TargetColumn()
	require.NoError(t, err)
	assert.Equal(t, TargetPrognosis, target)

	table, err = Parse("symptom_1,disease\na,b", ",")
	require.NoError(t, err)
	target, err = table.TargetColumn()
	require.NoError(t, err)
	assert.Equal(t, TargetDisease, target)
}

func TestTargetColumnMissing(t *testing.T) {
	table, err := Parse("symptom_1,label\na,b", ",")
	require.NoError(t, err)

	_, err = table.TargetColumn()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
}

func TestNormalizeValueFoldsCompatibilityForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: " Fever ", want: "fever"},
		{in: "ＣＯＵＧＨ", want: "cough"},
		{in: "\u00a0skin_rash\u00a0", want: "skin_rash"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}
	assert.Equal(t, "symptom_1", NormalizeHeader("Symptom 1"))
}
