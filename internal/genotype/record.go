// Package genotype reads consumer genotype files (23andMe-style raw data),
// validates each call and reshapes it into the canonical four-column record.
package genotype

const (
	// NoCall is the canonical marker for a missing genotype.
	NoCall = "--"

	// ZeroCall is how some arrays and exports write a missing genotype.
	ZeroCall = "00"
)

// Record is one canonical genotype call.
type Record struct {
	RSID       string
	Chromosome string
	Position   string
	Genotype   string
}

// Fields returns the record in canonical column order.
func (r Record) Fields() []string {
	return []string{r.RSID, r.Chromosome, r.Position, r.Genotype}
}

// IsNoCall reports whether the record carries no genotype.
func (r Record) IsNoCall() bool {
	return r.Genotype == NoCall
}

// FromFields reshapes raw fields into a Record and validates it.
// Five fields are read as (rsid, chromosome, position, allele1, allele2)
// and the alleles are concatenated; four fields are used as they are.
// A genotype of ZeroCall is rewritten to NoCall once the record validates.
// line is only used to annotate errors.
func FromFields(fields []string, line int) (Record, error) {
	var rec Record
	switch len(fields) {
	case 5:
		rec = Record{
			RSID:       fields[0],
			Chromosome: fields[1],
			Position:   fields[2],
			Genotype:   fields[3] + fields[4],
		}
	case 4:
		rec = Record{
			RSID:       fields[0],
			Chromosome: fields[1],
			Position:   fields[2],
			Genotype:   fields[3],
		}
	default:
		return Record{}, &Error{Kind: MalformedRecord, Line: line, Fields: fields}
	}

	if err := rec.validate(fields, line); err != nil {
		return Record{}, err
	}

	if rec.Genotype == ZeroCall {
		rec.Genotype = NoCall
	}
	return rec, nil
}

func (r Record) validate(fields []string, line int) error {
	switch {
	case !ValidChromosome(r.Chromosome):
		return &Error{Kind: InvalidChromosome, Line: line, Value: r.Chromosome, Fields: fields}
	case !ValidPosition(r.Position):
		return &Error{Kind: InvalidPosition, Line: line, Value: r.Position, Fields: fields}
	case !ValidGenotype(r.Genotype):
		return &Error{Kind: InvalidGenotype, Line: line, Value: r.Genotype, Fields: fields}
	}
	return nil
}
