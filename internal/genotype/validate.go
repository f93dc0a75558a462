package genotype

import (
	"math/big"
	"strconv"
	"strings"
)

// MaxAutosome is the highest numeric chromosome code accepted.
// Array vendors number past 22 for X (23), Y (24), XY (25) and MT (26).
const MaxAutosome = 26

var namedChromosomes = map[string]bool{
	"X":  true,
	"Y":  true,
	"XY": true,
	"MT": true,
}

// genotypeAlphabet holds every character allowed in a genotype call.
const genotypeAlphabet = "ACTGDI-0"

// ValidChromosome reports whether chrom is X, Y, XY or MT (any case),
// or an integer between 0 and MaxAutosome inclusive.
func ValidChromosome(chrom string) bool {
	if namedChromosomes[strings.ToUpper(chrom)] {
		return true
	}
	n, err := strconv.Atoi(strings.TrimSpace(chrom))
	if err != nil {
		return false
	}
	return n >= 0 && n <= MaxAutosome
}

// ValidPosition reports whether pos is a base-10 integer.
// Sign and magnitude are not checked.
func ValidPosition(pos string) bool {
	_, ok := new(big.Int).SetString(strings.TrimSpace(pos), 10)
	return ok
}

// ValidGenotype reports whether every character of geno is one of
// A, C, T, G, D, I, '-' or '0'. The empty string is valid.
func ValidGenotype(geno string) bool {
	for _, r := range geno {
		if !strings.ContainsRune(genotypeAlphabet, r) {
			return false
		}
	}
	return true
}
