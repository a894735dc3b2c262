package nlp

import (
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var universalPOS = map[string]domain.POS{
	"VERB":  domain.POSVerb,
	"AUX":   domain.POSAux,
	"NOUN":  domain.POSNoun,
	"PROPN": domain.POSPropn,
	"PRON":  domain.POSPron,
	"ADP":   domain.POSAdp,
	"DET":   domain.POSDet,
	"ADJ":   domain.POSAdj,
	"ADV":   domain.POSAdv,
	"CCONJ": domain.POSCconj,
	"CONJ":  domain.POSCconj,
	"SCONJ": domain.POSAdp,
	"NUM":   domain.POSNum,
	"PART":  domain.POSPart,
	"PUNCT": domain.POSPunct,
	"SYM":   domain.POSSym,
	"X":     domain.POSOther,
	"INTJ":  domain.POSOther,
}

// POSFromTag maps a Penn Treebank tag, or an already universal tag, to a
// universal part of speech.
func POSFromTag(tag string) domain.POS {
	if pos, ok := universalPOS[tag]; ok {
		return pos
	}
	switch {
	case tag == "NN" || tag == "NNS":
		return domain.POSNoun
	case strings.HasPrefix(tag, "NNP"):
		return domain.POSPropn
	case strings.HasPrefix(tag, "VB"):
		return domain.POSVerb
	case tag == "MD":
		return domain.POSAux
	case tag == "PRP" || tag == "PRP$" || tag == "WP" || tag == "WP$" || tag == "EX":
		return domain.POSPron
	case tag == "IN":
		return domain.POSAdp
	case tag == "TO" || tag == "POS" || tag == "RP":
		return domain.POSPart
	case tag == "DT" || tag == "PDT" || tag == "WDT":
		return domain.POSDet
	case strings.HasPrefix(tag, "JJ"):
		return domain.POSAdj
	case strings.HasPrefix(tag, "RB") || tag == "WRB":
		return domain.POSAdv
	case tag == "CC":
		return domain.POSCconj
	case tag == "CD":
		return domain.POSNum
	case tag == "SYM" || tag == "$" || tag == "#":
		return domain.POSSym
	case isPunctTag(tag):
		return domain.POSPunct
	}
	return domain.POSOther
}

func isPunctTag(tag string) bool {
	switch tag {
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "HYPH", "NFP", "\"":
		return true
	}
	return false
}

var depLabels = map[string]domain.DepKind{
	"root":       domain.DepRoot,
	"nsubj":      domain.DepSubject,
	"csubj":      domain.DepSubject,
	"nsubjpass":  domain.DepPassiveSubject,
	"nsubj:pass": domain.DepPassiveSubject,
	"csubjpass":  domain.DepPassiveSubject,
	"dobj":       domain.DepDirectObject,
	"obj":        domain.DepDirectObject,
	"iobj":       domain.DepIndirectObject,
	"dative":     domain.DepIndirectObject,
	"pobj":       domain.DepPrepObject,
	"prep":       domain.DepPreposition,
	"case":       domain.DepPreposition,
	"appos":      domain.DepAppositive,
	"conj":       domain.DepConjunct,
	"cc":         domain.DepCoordinator,
	"aux":        domain.DepAux,
	"auxpass":    domain.DepPassiveAux,
	"aux:pass":   domain.DepPassiveAux,
	"compound":   domain.DepCompound,
	"flat":       domain.DepCompound,
	"flat:name":  domain.DepCompound,
	"det":        domain.DepDeterminer,
	"amod":       domain.DepModifier,
	"punct":      domain.DepPunct,
}

// DepKindFromLabel maps a spaCy or Universal Dependencies relation label.
// Unknown labels become domain.DepOther.
func DepKindFromLabel(label string) domain.DepKind {
	if kind, ok := depLabels[strings.ToLower(label)]; ok {
		return kind
	}
	return domain.DepOther
}
