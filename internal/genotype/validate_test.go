package genotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidChromosome(t *testing.T) {
	tests := []struct {
		chrom string
		want  bool
	}{
		{"X", true},
		{"y", true},
		{"XY", true},
		{"xy", true},
		{"MT", true},
		{"mt", true},
		{"0", true},
		{"1", true},
		{"22", true},
		{"26", true},
		{" 7 ", true},
		{"27", false},
		{"-1", false},
		{"Z", false},
		{"chr1", false},
		{"M", false},
		{"", false},
		{"1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.chrom, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidChromosome(tt.chrom))
		})
	}
}

func TestValidPosition(t *testing.T) {
	tests := []struct {
		pos  string
		want bool
	}{
		{"12345", true},
		{"-1", true},
		{"0", true},
		{"+42", true},
		{"123456789012345678901234567890", true},
		{"12.5", false},
		{"chr1", false},
		{"1e5", false},
		{"", false},
		{"0x10", false},
	}

	for _, tt := range tests {
		t.Run(tt.pos, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPosition(tt.pos))
		})
	}
}

func TestValidGenotype(t *testing.T) {
	tests := []struct {
		geno string
		want bool
	}{
		{"AG", true},
		{"--", true},
		{"DI", true},
		{"00", true},
		{"A", true},
		{"TTTT", true},
		{"", true},
		{"AGX", false},
		{"ag", false},
		{"N", false},
		{"A/G", false},
	}

	for _, tt := range tests {
		t.Run(tt.geno, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidGenotype(tt.geno))
		})
	}
}
