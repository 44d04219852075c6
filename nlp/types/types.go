package types

import (
	"reflect"

	"sbparse/util"
)

const (
	ROOT_TOKEN = "ROOT"
	ROOT_LABEL = "root"
)

type TaggedToken struct {
	Token, Lemma, POS string
}

type Sentence interface {
	util.Equaler
	Tokens() []string
}

type TaggedSentence interface {
	Sentence
	TaggedTokens() []TaggedToken
}

type BasicTaggedSentence []TaggedToken

var _ TaggedSentence = BasicTaggedSentence{}

func (b BasicTaggedSentence) Tokens() []string {
	tokens := make([]string, len(b))
	for i, token := range b {
		tokens[i] = token.Token
	}
	return tokens
}

func (b BasicTaggedSentence) TaggedTokens() []TaggedToken {
	return []TaggedToken(b)
}

func (b BasicTaggedSentence) Equal(otherEq util.Equaler) bool {
	asTagged, ok := otherEq.(BasicTaggedSentence)
	return ok && reflect.DeepEqual(b, asTagged)
}
