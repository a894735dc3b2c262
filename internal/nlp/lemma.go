package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var irregularLemmas = map[string]string{
	"is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be", "am": "be", "'s": "be",
	"has": "have", "had": "have", "having": "have",
	"does": "do", "did": "do", "done": "do",
	"said": "say", "says": "say",
	"sold": "sell", "bought": "buy", "made": "make", "led": "lead",
	"paid": "pay", "held": "hold", "took": "take", "taken": "take",
	"became": "become", "began": "begin", "begun": "begin",
	"left": "leave", "met": "meet", "won": "win", "went": "go", "gone": "go",
}

// Lemmatizer reduces tokens to dictionary forms. The English dictionary is
// consulted first; suffix rules cover inflected verbs it does not know.
type Lemmatizer struct {
	dict *golem.Lemmatizer
}

// NewLemmatizer loads the English dictionary.
func NewLemmatizer() (*Lemmatizer, error) {
	dict, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemma dictionary: %w", err)
	}
	return &Lemmatizer{dict: dict}, nil
}

// NewRuleLemmatizer returns a lemmatizer that only applies suffix rules.
func NewRuleLemmatizer() *Lemmatizer {
	return &Lemmatizer{}
}

// Lemma returns the lowercase dictionary form of tok. Proper nouns keep their
// surface text.
func (l *Lemmatizer) Lemma(tok domain.Token) string {
	if tok.POS == domain.POSPropn {
		return tok.Text
	}
	lower := strings.ToLower(tok.Text)
	if lemma, ok := irregularLemmas[lower]; ok && (tok.POS == domain.POSVerb || tok.POS == domain.POSAux) {
		return lemma
	}
	if l != nil && l.dict != nil && isInflectable(tok.POS) {
		if lemma := l.dict.Lemma(lower); lemma != "" && lemma != lower {
			return lemma
		}
	}
	if tok.POS == domain.POSVerb {
		return verbStem(lower, tok.Tag)
	}
	return lower
}

// Fill sets the lemma of every token that lacks one.
func (l *Lemmatizer) Fill(doc *domain.Doc) {
	for i := range doc.Tokens {
		if doc.Tokens[i].Lemma == "" {
			doc.Tokens[i].Lemma = l.Lemma(doc.Tokens[i])
		}
	}
}

func isInflectable(pos domain.POS) bool {
	switch pos {
	case domain.POSVerb, domain.POSAux, domain.POSNoun, domain.POSAdj:
		return true
	}
	return false
}

func verbStem(w, tag string) string {
	switch {
	case tag == "VBZ" && strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case tag == "VBZ" && (strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "xes")):
		return w[:len(w)-2]
	case tag == "VBZ" && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	case (tag == "VBD" || tag == "VBN") && strings.HasSuffix(w, "eed"):
		return w[:len(w)-1]
	case (tag == "VBD" || tag == "VBN") && strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case (tag == "VBD" || tag == "VBN") && strings.HasSuffix(w, "ed") && len(w) > 3:
		return restoreStem(w[:len(w)-2])
	case tag == "VBG" && strings.HasSuffix(w, "ing") && len(w) > 5:
		return restoreStem(w[:len(w)-3])
	}
	return w
}

// restoreStem undoes consonant doubling and the dropped final e.
func restoreStem(s string) string {
	n := len(s)
	if n >= 2 && s[n-1] == s[n-2] && !strings.ContainsRune("aeiouslz", rune(s[n-1])) {
		return s[:n-1]
	}
	if n >= 2 && needsFinalE(s) {
		return s + "e"
	}
	return s
}

func needsFinalE(s string) bool {
	for _, suffix := range []string{"ir", "ur", "at", "iz", "uc", "as", "ag", "id", "iv", "ov", "v", "rg", "ang", "dg", "ut", "nc", "am"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
