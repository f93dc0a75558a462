package genotype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   Record
	}{
		{
			name:   "four columns",
			fields: []string{"rs1", "1", "100", "AG"},
			want:   Record{RSID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		},
		{
			name:   "five columns merge alleles",
			fields: []string{"rs2", "2", "200", "A", "G"},
			want:   Record{RSID: "rs2", Chromosome: "2", Position: "200", Genotype: "AG"},
		},
		{
			name:   "zero call becomes no-call",
			fields: []string{"rs3", "3", "300", "00"},
			want:   Record{RSID: "rs3", Chromosome: "3", Position: "300", Genotype: NoCall},
		},
		{
			name:   "split zero alleles become no-call",
			fields: []string{"rs4", "X", "400", "0", "0"},
			want:   Record{RSID: "rs4", Chromosome: "X", Position: "400", Genotype: NoCall},
		},
		{
			name:   "single zero untouched",
			fields: []string{"rs5", "Y", "500", "0"},
			want:   Record{RSID: "rs5", Chromosome: "Y", Position: "500", Genotype: "0"},
		},
		{
			name:   "empty genotype accepted",
			fields: []string{"rs6", "MT", "600", ""},
			want:   Record{RSID: "rs6", Chromosome: "MT", Position: "600", Genotype: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFields(tt.fields, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromFields_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		kind   Kind
		value  string
	}{
		{"three columns", []string{"rs1", "1", "100"}, MalformedRecord, ""},
		{"six columns", []string{"rs1", "1", "100", "A", "G", "x"}, MalformedRecord, ""},
		{"bad chromosome", []string{"rs3", "27", "300", "AG"}, InvalidChromosome, "27"},
		{"bad position", []string{"rs3", "1", "12.5", "AG"}, InvalidPosition, "12.5"},
		{"bad genotype", []string{"rs3", "1", "300", "AGX"}, InvalidGenotype, "AGX"},
		{"bad merged genotype", []string{"rs3", "1", "300", "A", "N"}, InvalidGenotype, "AN"},
		{"chromosome checked first", []string{"rs3", "Z", "x", "?"}, InvalidChromosome, "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFields(tt.fields, 42)
			require.Error(t, err)

			var ge *Error
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.kind, ge.Kind)
			assert.Equal(t, 42, ge.Line)
			assert.Equal(t, tt.value, ge.Value)
			assert.Equal(t, tt.fields, ge.Fields)
		})
	}
}

func TestRecordFields(t *testing.T) {
	r := Record{RSID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"}
	assert.Equal(t, []string{"rs1", "1", "100", "AG"}, r.Fields())
	assert.False(t, r.IsNoCall())
	r.Genotype = NoCall
	assert.True(t, r.IsNoCall())
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: InvalidChromosome, Line: 4, Value: "27", Fields: []string{"rs3", "27", "300", "AG"}}
	msg := err.Error()
	assert.Contains(t, msg, "line 4")
	assert.Contains(t, msg, "chromosome should be either X, Y, XY, MT or 0-26")
	assert.Contains(t, msg, `"27"`)
	assert.Contains(t, msg, "is invalid")

	err = &Error{Kind: MalformedRecord, Line: 2, Fields: []string{"a", "b"}}
	assert.Contains(t, err.Error(), "expect 4 or 5 columns (found 2)")

	err = &Error{Kind: InputNotFound, Value: "/nope.txt"}
	assert.Equal(t, `check INPUT FILE exists and it's a file (got "/nope.txt")`, err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, InvalidGenotype, KindOf(&Error{Kind: InvalidGenotype}))
	assert.Equal(t, "InvalidGenotype", InvalidGenotype.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
