// Package effect defines the closed set of variant consequence kinds used
// throughout prioritisation.
package effect

import "strings"

// Impact levels for variant consequences.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// Kind is a Sequence Ontology consequence category. The zero value is
// SequenceVariant, the least specific term.
type Kind uint8

const (
	SequenceVariant Kind = iota
	Custom

	// HIGH impact
	FrameshiftElongation
	FrameshiftTruncation
	FrameshiftVariant
	InternalFeatureElongation
	FeatureTruncation
	StopGained
	StopLost
	StartLost
	SpliceAcceptorVariant
	SpliceDonorVariant

	// MODERATE impact
	MNV
	MissenseVariant
	InframeInsertion
	DisruptiveInframeInsertion
	InframeDeletion
	DisruptiveInframeDeletion

	// LOW impact
	SpliceRegionVariant
	StopRetainedVariant
	InitiatorCodonVariant
	SynonymousVariant

	// MODIFIER impact
	FivePrimeUTRTruncation
	FivePrimeUTRExonVariant
	FivePrimeUTRIntronVariant
	ThreePrimeUTRTruncation
	ThreePrimeUTRExonVariant
	ThreePrimeUTRIntronVariant
	CodingTranscriptIntronVariant
	NonCodingTranscriptExonVariant
	NonCodingTranscriptIntronVariant
	ConservedIntergenicVariant
	ConservedIntronVariant
	IntronVariant
	IntragenicVariant
	UpstreamGeneVariant
	DownstreamGeneVariant
	IntergenicRegion
	IntergenicVariant
	RegulatoryRegionVariant
	TFBindingSiteVariant

	numKinds
)

var terms = [numKinds]string{
	SequenceVariant:                  "sequence_variant",
	Custom:                           "custom",
	FrameshiftElongation:             "frameshift_elongation",
	FrameshiftTruncation:             "frameshift_truncation",
	FrameshiftVariant:                "frameshift_variant",
	InternalFeatureElongation:        "internal_feature_elongation",
	FeatureTruncation:                "feature_truncation",
	StopGained:                       "stop_gained",
	StopLost:                         "stop_lost",
	StartLost:                        "start_lost",
	SpliceAcceptorVariant:            "splice_acceptor_variant",
	SpliceDonorVariant:               "splice_donor_variant",
	MNV:                              "mnv",
	MissenseVariant:                  "missense_variant",
	InframeInsertion:                 "inframe_insertion",
	DisruptiveInframeInsertion:       "disruptive_inframe_insertion",
	InframeDeletion:                  "inframe_deletion",
	DisruptiveInframeDeletion:        "disruptive_inframe_deletion",
	SpliceRegionVariant:              "splice_region_variant",
	StopRetainedVariant:              "stop_retained_variant",
	InitiatorCodonVariant:            "initiator_codon_variant",
	SynonymousVariant:                "synonymous_variant",
	FivePrimeUTRTruncation:           "5_prime_UTR_truncation",
	FivePrimeUTRExonVariant:          "5_prime_UTR_exon_variant",
	FivePrimeUTRIntronVariant:        "5_prime_UTR_intron_variant",
	ThreePrimeUTRTruncation:          "3_prime_UTR_truncation",
	ThreePrimeUTRExonVariant:         "3_prime_UTR_exon_variant",
	ThreePrimeUTRIntronVariant:       "3_prime_UTR_intron_variant",
	CodingTranscriptIntronVariant:    "coding_transcript_intron_variant",
	NonCodingTranscriptExonVariant:   "non_coding_transcript_exon_variant",
	NonCodingTranscriptIntronVariant: "non_coding_transcript_intron_variant",
	ConservedIntergenicVariant:       "conserved_intergenic_variant",
	ConservedIntronVariant:           "conserved_intron_variant",
	IntronVariant:                    "intron_variant",
	IntragenicVariant:                "intragenic_variant",
	UpstreamGeneVariant:              "upstream_gene_variant",
	DownstreamGeneVariant:            "downstream_gene_variant",
	IntergenicRegion:                 "intergenic_region",
	IntergenicVariant:                "intergenic_variant",
	RegulatoryRegionVariant:          "regulatory_region_variant",
	TFBindingSiteVariant:             "TF_binding_site_variant",
}

var byTerm = func() map[string]Kind {
	m := make(map[string]Kind, len(terms))
	for k, t := range terms {
		m[t] = Kind(k)
	}
	return m
}()

// aliases maps alternative spellings found in upstream annotators.
var aliases = map[string]Kind{
	"5_prime_UTR_variant":     FivePrimeUTRExonVariant,
	"3_prime_UTR_variant":     ThreePrimeUTRExonVariant,
	"tf_binding_site_variant": TFBindingSiteVariant,
	"start_retained_variant":  InitiatorCodonVariant,
}

// String returns the Sequence Ontology term.
func (k Kind) String() string {
	if k >= numKinds {
		return terms[SequenceVariant]
	}
	return terms[k]
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	return k < numKinds
}

// Parse returns the Kind for a Sequence Ontology term. For comma-separated
// compound consequences the first recognised term wins, which matches the
// most-severe-first ordering produced by annotators.
func Parse(term string) (Kind, bool) {
	if k, ok := byTerm[term]; ok {
		return k, true
	}
	if k, ok := aliases[term]; ok {
		return k, true
	}
	for rest := term; rest != ""; {
		t := rest
		if i := strings.IndexByte(rest, ','); i >= 0 {
			t = rest[:i]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if t == term {
			break
		}
		if k, ok := byTerm[t]; ok {
			return k, true
		}
		if k, ok := aliases[t]; ok {
			return k, true
		}
	}
	return SequenceVariant, false
}

// IsReassignmentEligible reports whether a variant with this effect lies
// outside a protein-coding region in a way that makes its nearest-gene
// assignment unreliable.
func (k Kind) IsReassignmentEligible() bool {
	switch k {
	case CodingTranscriptIntronVariant,
		ConservedIntergenicVariant,
		ConservedIntronVariant,
		DownstreamGeneVariant,
		IntergenicRegion,
		IntergenicVariant,
		IntragenicVariant,
		IntronVariant,
		NonCodingTranscriptIntronVariant,
		RegulatoryRegionVariant,
		TFBindingSiteVariant,
		UpstreamGeneVariant:
		return true
	}
	return false
}

// Impact returns the impact level of the effect.
func (k Kind) Impact() string {
	switch k {
	case FrameshiftElongation, FrameshiftTruncation, FrameshiftVariant,
		InternalFeatureElongation, FeatureTruncation,
		StopGained, StopLost, StartLost,
		SpliceAcceptorVariant, SpliceDonorVariant:
		return ImpactHigh
	case MNV, MissenseVariant,
		InframeInsertion, DisruptiveInframeInsertion,
		InframeDeletion, DisruptiveInframeDeletion:
		return ImpactModerate
	case SpliceRegionVariant, StopRetainedVariant,
		InitiatorCodonVariant, SynonymousVariant:
		return ImpactLow
	}
	return ImpactModifier
}

// IsCoding reports whether the effect alters or sits within coding sequence.
func (k Kind) IsCoding() bool {
	return k.Impact() != ImpactModifier
}

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

var reportable = []Kind{
	FrameshiftElongation, FrameshiftTruncation, FrameshiftVariant,
	InternalFeatureElongation, FeatureTruncation, MNV,
	StopGained, StopLost, StartLost,
	SpliceAcceptorVariant, SpliceDonorVariant,
	MissenseVariant, InframeInsertion,
	DisruptiveInframeInsertion, InframeDeletion,
	DisruptiveInframeDeletion,
	SpliceRegionVariant, StopRetainedVariant,
	InitiatorCodonVariant, SynonymousVariant,
	FivePrimeUTRTruncation,
	FivePrimeUTRIntronVariant,
	ThreePrimeUTRTruncation,
	ThreePrimeUTRIntronVariant,
	ThreePrimeUTRExonVariant,
	CodingTranscriptIntronVariant, NonCodingTranscriptExonVariant,
	NonCodingTranscriptIntronVariant, UpstreamGeneVariant,
	DownstreamGeneVariant, IntergenicVariant,
}

// Reportable returns the effect kinds shown in the variant effect summary
// table, in display order. The returned slice is a copy.
func Reportable() []Kind {
	out := make([]Kind, len(reportable))
	copy(out, reportable)
	return out
}

// IsReportable reports whether k is shown in the effect summary table.
func (k Kind) IsReportable() bool {
	for _, r := range reportable {
		if r == k {
			return true
		}
	}
	return false
}
