package taggedsentence

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	nlp "sbparse/nlp/types"
)

const TEST_TAGGED = "Was/VBD it/PRP seen/VBN by/IN John/NNP\n" +
	"\n" +
	"1/2/CD cup/NN\n"

func TestRead(t *testing.T) {
	sents, err := Read(strings.NewReader(TEST_TAGGED))
	if err != nil {
		t.Fatal(err)
	}
	if len(sents) != 2 {
		t.Fatal("Expected 2 sentences, got", len(sents))
	}
	if len(sents[0]) != 5 {
		t.Error("Expected 5 tokens, got", len(sents[0]))
	}
	expected := nlp.TaggedToken{Token: "Was", Lemma: "was", POS: "VBD"}
	if sents[0][0] != expected {
		t.Error("Wrong token", sents[0][0])
	}
	if sents[1][0].Token != "1/2" || sents[1][0].POS != "CD" {
		t.Error("Tag should follow the last separator", sents[1][0])
	}
}

func TestReadErrors(t *testing.T) {
	for _, s := range []string{"Was VBD\n", "Was/ it/PRP\n", "/VBD\n"} {
		if _, err := Read(strings.NewReader(s)); !errors.Is(err, ErrUntagged) {
			t.Errorf("Expected untagged error for %q, got %v", s, err)
		}
	}
}

func TestWrite(t *testing.T) {
	sents, err := Read(strings.NewReader(TEST_TAGGED))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, []nlp.TaggedSentence{sents[0], sents[1]}); err != nil {
		t.Fatal(err)
	}
	expected := strings.Replace(TEST_TAGGED, "\n\n", "\n", 1)
	if buf.String() != expected {
		t.Errorf("Write mismatch:\n%s\nexpected\n%s", buf.String(), expected)
	}
}
