package nlp

import (
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// Annotate assigns a head and dependency kind to every token of doc from noun
// chunks and verb groups. POS tags and lemmas must already be set. Each
// sentence becomes a tree whose head chains end at the sentence root.
func Annotate(doc *domain.Doc) {
	for _, s := range doc.Sentences {
		a := &annotator{toks: doc.Tokens, lo: s.TokenStart, hi: s.TokenEnd}
		a.run()
	}
}

type unitKind int

const (
	unitToken unitKind = iota
	unitChunk
	unitVerbs
	unitPrep
)

type unit struct {
	kind       unitKind
	start, end int
	head       int
	passive    bool
}

var none = unit{kind: unitToken, head: -1}

var auxLemmas = map[string]bool{
	"be": true, "have": true, "do": true,
	"will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
}

var markers = map[string]bool{
	"that": true, "because": true, "whether": true, "although": true, "while": true, "if": true,
}

type annotator struct {
	toks   []domain.Token
	lo, hi int
}

func (a *annotator) run() {
	if a.hi <= a.lo {
		return
	}
	for i := a.lo; i < a.hi; i++ {
		a.toks[i].Head = i
		a.toks[i].Dep = domain.DepOther
	}
	units := a.segment()
	root := pickRoot(units, a.lo)
	a.toks[root].Dep = domain.DepRoot
	a.attach(units, root)
}

func (a *annotator) lower(i int) string {
	return strings.ToLower(a.toks[i].Text)
}

func (a *annotator) isVerbal(i int) bool {
	p := a.toks[i].POS
	return p == domain.POSVerb || p == domain.POSAux
}

func (a *annotator) isTo(i int) bool {
	return a.toks[i].Tag == "TO" || (a.toks[i].POS == domain.POSPart && a.lower(i) == "to")
}

func (a *annotator) isFiller(i int) bool {
	t := a.toks[i]
	if t.POS == domain.POSAdv || a.isTo(i) {
		return true
	}
	l := a.lower(i)
	return t.POS == domain.POSPart && (l == "not" || l == "n't")
}

func (a *annotator) segment() []unit {
	var units []unit
	i := a.lo
	for i < a.hi {
		if end, ok := a.verbGroupEnd(i); ok {
			units = append(units, a.verbGroup(i, end))
			i = end
			continue
		}
		if end, head, ok := a.chunkEnd(i); ok {
			units = append(units, unit{kind: unitChunk, start: i, end: end, head: head})
			i = end
			continue
		}
		if a.isPrep(i) {
			a.toks[i].POS = domain.POSAdp
			units = append(units, unit{kind: unitPrep, start: i, end: i + 1, head: i})
			i++
			continue
		}
		units = append(units, unit{kind: unitToken, start: i, end: i + 1, head: i})
		i++
	}
	return units
}

func (a *annotator) verbGroupEnd(i int) (int, bool) {
	if !a.isVerbal(i) && !(a.isTo(i) && i+1 < a.hi && a.isVerbal(i+1)) {
		return 0, false
	}
	last := -1
	j := i
	for j < a.hi {
		if a.isVerbal(j) {
			last = j
			j++
			continue
		}
		k := j
		for k < a.hi && a.isFiller(k) {
			k++
		}
		if k == j || k >= a.hi || !a.isVerbal(k) {
			break
		}
		j = k
	}
	if last < 0 {
		return 0, false
	}
	return last + 1, true
}

// verbGroup picks the main verb and attaches auxiliaries and fillers to it.
func (a *annotator) verbGroup(start, end int) unit {
	main := -1
	for i := start; i < end; i++ {
		if a.toks[i].Lemma == "be" {
			a.toks[i].POS = domain.POSAux
		}
		if a.toks[i].POS == domain.POSVerb {
			main = i
		}
	}
	if main < 0 {
		for i := end - 1; i >= start; i-- {
			if a.isVerbal(i) {
				main = i
				break
			}
		}
	}
	if a.toks[main].Tag == "VBD" {
		for i := start; i < main; i++ {
			if l := a.toks[i].Lemma; l == "be" || l == "have" {
				a.toks[main].Tag = "VBN"
			}
		}
	}
	passive := false
	for i := start; i < end; i++ {
		if i == main {
			continue
		}
		a.toks[i].Head = main
		switch {
		case a.isVerbal(i) && i < main && (auxLemmas[a.toks[i].Lemma] || a.toks[i].Tag == "MD"):
			a.toks[i].POS = domain.POSAux
			a.toks[i].Dep = domain.DepAux
			if a.toks[i].Lemma == "be" && a.toks[main].Tag == "VBN" {
				a.toks[i].Dep = domain.DepPassiveAux
				passive = true
			}
		case a.isTo(i):
			a.toks[i].Dep = domain.DepAux
		default:
			a.toks[i].Dep = domain.DepOther
		}
	}
	return unit{kind: unitVerbs, start: start, end: end, head: main, passive: passive}
}

func (a *annotator) isPossessivePron(i int) bool {
	t := a.toks[i]
	if t.POS != domain.POSPron || (t.Tag != "PRP$" && t.Tag != "WP$") {
		return false
	}
	if i+1 >= a.hi {
		return false
	}
	next := a.toks[i+1].POS
	return next.IsNominal() || next == domain.POSAdj || next == domain.POSNum
}

func (a *annotator) isPossessiveMarker(i int) bool {
	t := a.toks[i]
	return t.Tag == "POS" || (t.POS == domain.POSPart && (t.Text == "'s" || t.Text == "’s"))
}

// chunkEnd returns the end and head of the noun chunk starting at i.
func (a *annotator) chunkEnd(i int) (int, int, bool) {
	lastNominal := -1
	j := i
scan:
	for j < a.hi {
		t := a.toks[j]
		switch {
		case t.POS.IsNominal():
			lastNominal = j
		case t.POS == domain.POSAdj || t.POS == domain.POSNum:
		case j == i && t.POS == domain.POSDet:
		case j == i && a.isPossessivePron(j):
		case a.isPossessiveMarker(j) && lastNominal == j-1 && j+1 < a.hi && !a.isVerbal(j+1) && a.toks[j+1].POS != domain.POSPunct:
		default:
			break scan
		}
		j++
	}
	if lastNominal < 0 {
		if a.toks[i].POS == domain.POSPron {
			return i + 1, i, true
		}
		return 0, 0, false
	}
	return lastNominal + 1, lastNominal, true
}

func (a *annotator) isPrep(i int) bool {
	if a.toks[i].POS == domain.POSAdp {
		return !markers[a.lower(i)]
	}
	if a.isTo(i) && i+1 < a.hi {
		_, _, ok := a.chunkEnd(i + 1)
		return ok
	}
	return false
}

func pickRoot(units []unit, fallback int) int {
	for _, u := range units {
		if u.kind == unitVerbs {
			return u.head
		}
	}
	for _, u := range units {
		if u.kind == unitChunk {
			return u.head
		}
	}
	return fallback
}

func (a *annotator) set(i, head int, dep domain.DepKind) {
	a.toks[i].Head = head
	a.toks[i].Dep = dep
}

func (a *annotator) attachChunk(u unit) {
	for i := u.start; i < u.end; i++ {
		if i == u.head {
			continue
		}
		dep := domain.DepOther
		switch a.toks[i].POS {
		case domain.POSDet:
			dep = domain.DepDeterminer
		case domain.POSAdj:
			dep = domain.DepModifier
		case domain.POSNoun, domain.POSPropn:
			if i+1 < u.end && a.isPossessiveMarker(i+1) {
				dep = domain.DepOther
			} else {
				dep = domain.DepCompound
			}
		}
		a.set(i, u.head, dep)
	}
}

func (a *annotator) firstConjunct(h int) int {
	if a.toks[h].Dep == domain.DepConjunct {
		return a.toks[h].Head
	}
	return h
}

func (a *annotator) isComma(u unit) bool {
	return u.kind == unitToken && u.head >= 0 && a.toks[u.head].Text == ","
}

func (a *annotator) isCoordinator(u unit) bool {
	return u.kind == unitToken && u.head >= 0 && a.toks[u.head].POS == domain.POSCconj
}

// listFollows reports whether the units after ui continue a comma list that
// closes with a coordinated chunk.
func (a *annotator) listFollows(units []unit, ui int) bool {
	for k := ui + 1; k < len(units); k++ {
		switch {
		case units[k].kind == unitChunk || a.isComma(units[k]):
		case a.isCoordinator(units[k]):
			return k+1 < len(units) && units[k+1].kind == unitChunk
		default:
			return false
		}
	}
	return false
}

func (a *annotator) attach(units []unit, root int) {
	at := func(k int) unit {
		if k < 0 || k >= len(units) {
			return none
		}
		return units[k]
	}

	curVerb, lastObj, subj := -1, -1, -1
	var stray []int

	for ui, u := range units {
		prev, prev2, next := at(ui-1), at(ui-2), at(ui+1)

		switch u.kind {
		case unitVerbs:
			main := u.head
			if main != root {
				switch {
				case curVerb >= 0 && (a.isCoordinator(prev) || (a.isComma(prev) && a.isCoordinator(prev2))):
					a.set(main, curVerb, domain.DepConjunct)
				case curVerb >= 0:
					a.set(main, curVerb, domain.DepOther)
				default:
					a.set(main, root, domain.DepOther)
				}
			}
			if subj >= 0 {
				dep := domain.DepSubject
				if u.passive {
					dep = domain.DepPassiveSubject
				}
				a.set(subj, main, dep)
			}
			for _, s := range stray {
				a.set(s, main, domain.DepOther)
			}
			subj, stray = -1, nil
			curVerb, lastObj = main, -1

		case unitPrep:
			p := u.head
			if p == root {
				continue
			}
			switch {
			case a.lower(p) == "of" && prev.kind == unitChunk:
				a.set(p, prev.head, domain.DepPreposition)
			case curVerb >= 0:
				a.set(p, curVerb, domain.DepPreposition)
			case prev.kind == unitChunk:
				a.set(p, prev.head, domain.DepPreposition)
			default:
				a.set(p, root, domain.DepPreposition)
			}

		case unitChunk:
			h := u.head
			a.attachChunk(u)
			if h == root {
				continue
			}
			switch {
			case prev.kind == unitPrep:
				a.set(h, prev.head, domain.DepPrepObject)
			case a.isCoordinator(prev) && prev2.kind == unitChunk:
				a.set(h, a.firstConjunct(prev2.head), domain.DepConjunct)
			case a.isComma(prev) && prev2.kind == unitChunk && a.listFollows(units, ui):
				a.set(h, a.firstConjunct(prev2.head), domain.DepConjunct)
			case a.isComma(prev) && prev2.kind == unitChunk:
				a.set(h, prev2.head, domain.DepAppositive)
			case next.kind == unitVerbs:
				if subj >= 0 {
					stray = append(stray, subj)
				}
				subj = h
			case curVerb >= 0 && lastObj >= 0 && prev.kind == unitChunk && prev.head == lastObj:
				a.toks[lastObj].Dep = domain.DepIndirectObject
				a.set(h, curVerb, domain.DepDirectObject)
				lastObj = h
			case curVerb >= 0 && lastObj < 0:
				a.set(h, curVerb, domain.DepDirectObject)
				lastObj = h
			case curVerb >= 0:
				a.set(h, curVerb, domain.DepOther)
			case subj < 0:
				subj = h
			default:
				stray = append(stray, h)
			}

		case unitToken:
			t := u.head
			if t == root {
				continue
			}
			switch {
			case a.toks[t].POS == domain.POSPunct:
				a.set(t, root, domain.DepPunct)
			case a.toks[t].POS == domain.POSCconj && prev.kind == unitChunk && next.kind == unitChunk:
				a.set(t, a.firstConjunct(prev.head), domain.DepCoordinator)
			case a.toks[t].POS == domain.POSCconj && curVerb >= 0:
				a.set(t, curVerb, domain.DepCoordinator)
			case a.toks[t].POS == domain.POSCconj:
				a.set(t, root, domain.DepCoordinator)
			case curVerb >= 0:
				a.set(t, curVerb, domain.DepOther)
			default:
				a.set(t, root, domain.DepOther)
			}
		}
	}

	if subj >= 0 && subj != root {
		a.set(subj, root, domain.DepOther)
	}
	for _, s := range stray {
		if s != root {
			a.set(s, root, domain.DepOther)
		}
	}
}
