package english

import (
	"regexp"
	"strings"
)

// Penn Treebank tags
const (
	POS_IN  = "IN"
	POS_UH  = "UH"
	POS_VB  = "VB"
	POS_VBD = "VBD"
	POS_VBG = "VBG"
	POS_VBN = "VBN"
	POS_PRP = "PRP"
	POS_WP  = "WP"
)

// Stanford dependency labels
const (
	DEP_NSUBJ     = "nsubj"
	DEP_NSUBJPASS = "nsubjpass"
	DEP_CSUBJ     = "csubj"
	DEP_CSUBJPASS = "csubjpass"
	DEP_ATTR      = "attr"
	DEP_AUX       = "aux"
	DEP_AUXPASS   = "auxpass"
	DEP_DOBJ      = "dobj"
	DEP_PRT       = "prt"
	DEP_ACOMP     = "acomp"
	DEP_ROOT      = "root"
)

const LEMMA_BE = "be"

// subject-like labels; a head takes at most one
var subjectPattern = regexp.MustCompile("^[nc]subj")

func IsNoun(pos string) bool {
	return strings.HasPrefix(pos, "NN") || pos == POS_PRP || pos == POS_WP
}

func IsVerb(pos string) bool {
	return strings.HasPrefix(pos, "VB")
}

func IsSubject(label string) bool {
	return subjectPattern.MatchString(label)
}

func IsAuxiliary(label string) bool {
	return label == DEP_AUX || label == DEP_AUXPASS
}
