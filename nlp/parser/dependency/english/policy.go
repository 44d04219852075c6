package english

import (
	"log"

	"sbparse/alg/transition"
	dep "sbparse/nlp/parser/dependency/transition"
)

// participle classes of a candidate main verb
const (
	notParticiple = iota
	passiveParticiple
	progressiveParticiple
)

// Policy holds the English rules of the parser: subject uniqueness and
// auxiliary head restrictions during reranking, copula restructuring before a
// transition, auxiliary demotion and secondary verb tag votes after an arc,
// and prepositional phrase re-attachment on the finished tree.
type Policy struct {
	Log bool
}

var _ dep.Policy = &Policy{}

// IsNotHead reports whether node id carries an auxiliary label
func (p *Policy) IsNotHead(c *dep.ListConfiguration, id int) bool {
	n := c.Tree.Node(id)
	return n != nil && n.HasHead() && IsAuxiliary(n.Label)
}

func (p *Policy) Rerank(c *dep.ListConfiguration, ps transition.Predictions) bool {
	var (
		lambda, beta = c.Lambda(), c.Beta()
		count        int
		changed      bool
	)
	for i := range ps {
		pred := &ps[i]
		var local bool
		switch pred.Label.Arc {
		case transition.Left:
			local = p.uniqueLeftSubject(c, pred, beta, lambda+1, beta) || p.nonHead(c, pred, beta)
		case transition.Right:
			local = p.uniqueRightSubject(c, pred, lambda, 1, beta) || p.nonHead(c, pred, lambda)
		}
		if local {
			changed = true
		} else {
			count++
			if count >= 2 {
				break
			}
		}
	}
	if changed {
		ps.Rank()
	}
	return changed
}

// uniqueLeftSubject suppresses a second subject for beta among the nodes
// between lambda and beta
func (p *Policy) uniqueLeftSubject(c *dep.ListConfiguration, pred *transition.Prediction, head, from, to int) bool {
	return p.uniqueSubject(c, pred, head, from, to)
}

// uniqueRightSubject suppresses a second subject for lambda among all nodes
// before beta
func (p *Policy) uniqueRightSubject(c *dep.ListConfiguration, pred *transition.Prediction, head, from, to int) bool {
	return p.uniqueSubject(c, pred, head, from, to)
}

func (p *Policy) uniqueSubject(c *dep.ListConfiguration, pred *transition.Prediction, head, from, to int) bool {
	if !IsSubject(pred.Label.Deprel) {
		return false
	}
	for _, i := range c.Tree.Dependents(head, from, to) {
		if IsSubject(c.Tree.Nodes[i].Label) {
			return pred.Invalidate()
		}
	}
	return false
}

func (p *Policy) nonHead(c *dep.ListConfiguration, pred *transition.Prediction, head int) bool {
	if p.IsNotHead(c, head) {
		return pred.Invalidate()
	}
	return false
}

// ResetPre restructures a copula misparse:
//
//	be <- subj(lambda) ... VBN|VBG(beta)
//
// becomes be and lambda both depending on beta, be as a (passive) auxiliary
// and lambda as a passive subject, and rewinds to just before be.
func (p *Policy) ResetPre(c *dep.ListConfiguration) (dep.Correction, error) {
	lambda, beta := c.Lambda(), c.Beta()
	t := c.Tree
	l, b := t.Node(lambda), t.Node(beta)
	if lambda == 0 || !l.HasHead() {
		return dep.NO_CORRECTION, nil
	}
	vType := participle(b)
	if vType == notParticiple {
		return dep.NO_CORRECTION, nil
	}
	be, subj := t.Node(l.Head), l.Label
	if !IsSubject(subj) && !(subj == DEP_ATTR && onlyDependent(t, be.Id, lambda, 1, beta)) {
		return dep.NO_CORRECTION, nil
	}
	if be.Lemma != LEMMA_BE || be.Id >= lambda || (be.HasHead() && be.Head >= be.Id) {
		return dep.NO_CORRECTION, nil
	}
	if t.IsDescendantOf(beta, be.Id) {
		return dep.NO_CORRECTION, nil
	}

	for _, i := range t.Dependents(be.Id, be.Id+1, beta) {
		if err := t.SetHead(i, beta, t.Nodes[i].Label); err != nil {
			return dep.NO_CORRECTION, err
		}
	}
	clearPreviousDependents(c, be.Id)
	auxLabel := DEP_AUX
	if vType == passiveParticiple {
		auxLabel = DEP_AUXPASS
	}
	if err := t.SetHead(be.Id, beta, auxLabel); err != nil {
		return dep.NO_CORRECTION, err
	}
	if vType == passiveParticiple {
		switch subj {
		case DEP_NSUBJ, DEP_ATTR:
			l.Label = DEP_NSUBJPASS
		case DEP_CSUBJ:
			l.Label = DEP_CSUBJPASS
		}
	}
	if b.POS == POS_VBD {
		b.POS = POS_VBN
	}
	if p.Log {
		log.Printf("Copula %d:%s moved under %d:%s as %s", be.Id, be.Token, beta, b.Token, auxLabel)
	}
	return dep.RewindTo(be.Id-1, false), nil
}

func participle(n *dep.DepNode) int {
	switch n.POS {
	case POS_VBN:
		return passiveParticiple
	case POS_VBG:
		return progressiveParticiple
	case POS_VBD:
		if p2, exists := n.Feat(dep.FEAT_POS2); exists && p2 == POS_VBN {
			return passiveParticiple
		}
	}
	return notParticiple
}

// onlyDependent reports whether id is the sole dependent of h in [from, to)
func onlyDependent(t *dep.DepTree, h, id, from, to int) bool {
	for _, i := range t.Dependents(h, from, to) {
		if i != id {
			return false
		}
	}
	return true
}

// clearPreviousDependents detaches the dependents of h that precede it and
// returns them to the list, reporting whether there were any
func clearPreviousDependents(c *dep.ListConfiguration, h int) bool {
	var found bool
	for i := h - 1; i > 0; i-- {
		if c.Tree.IsDependentOf(i, h) {
			c.Tree.ClearHead(i)
			c.State.Unreduce(i)
			found = true
		}
	}
	return found
}

func (p *Policy) ResetPost(c *dep.ListConfiguration, depID, head int) (dep.Correction, error) {
	p.resetVerbPOSTag(c, head, depID)
	if depID < head {
		return p.resetNotHead(c, depID), nil
	}
	return dep.NO_CORRECTION, nil
}

// resetVerbPOSTag votes for the secondary verb tag of a nominal or
// prepositional head that just took a verbal dependent
func (p *Policy) resetVerbPOSTag(c *dep.ListConfiguration, head, depID int) {
	h, d := c.Tree.Node(head), c.Tree.Node(depID)
	p2, exists := h.Feat(dep.FEAT_POS2)
	if !exists || !(IsNoun(h.POS) || h.POS == POS_IN) || !(IsVerb(p2) || p2 == POS_UH) {
		return
	}
	if d.Label != DEP_DOBJ && !IsAuxiliary(d.Label) && d.Label != DEP_PRT && d.Label != DEP_ACOMP {
		return
	}
	if p2 == POS_UH {
		h.SetFeat(dep.FEAT_POS2, POS_VB)
	}
	votes := c.State.Vote(head)
	if p.Log {
		log.Printf("Secondary tag vote %d for %d:%s", votes, head, h.Token)
	}
}

// resetNotHead frees the earlier dependents of a node just made auxiliary
func (p *Policy) resetNotHead(c *dep.ListConfiguration, id int) dep.Correction {
	if p.IsNotHead(c, id) && clearPreviousDependents(c, id) {
		if p.Log {
			log.Printf("Auxiliary %d:%s released its dependents", id, c.Tree.Nodes[id].Token)
		}
		return dep.RewindTo(id, true)
	}
	return dep.NO_CORRECTION
}

// PostParse moves a preposition from a noun to the verb above it when the
// preposition's own dependent precedes both
func (p *Policy) PostParse(t *dep.DepTree) int {
	var changed int
	for _, n := range t.Nodes[1:] {
		if postParsePP(t, n) {
			changed++
		}
	}
	return changed
}

func postParsePP(t *dep.DepTree, n *dep.DepNode) bool {
	if !n.HasHead() {
		return false
	}
	head := t.Nodes[n.Head]
	if !head.HasHead() {
		return false
	}
	gHead := t.Nodes[head.Head]
	if !gHead.HasHead() {
		return false
	}
	ggHead := t.Nodes[gHead.Head]
	if n.Id < ggHead.Id && ggHead.Id < gHead.Id && gHead.Id < head.Id &&
		head.POS == POS_IN && IsNoun(gHead.POS) && IsVerb(ggHead.POS) {
		// ggHead is above head, re-pointing cannot close a cycle
		head.Head = ggHead.Id
		return true
	}
	return false
}
