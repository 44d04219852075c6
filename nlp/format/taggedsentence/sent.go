package taggedsentence

// Package taggedsentence reads one sentence per line of space separated
// word/TAG tokens. A word may itself contain '/'; the tag follows the last.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	nlp "sbparse/nlp/types"
)

const (
	TOKEN_SEPARATOR = " "
	TAG_SEPARATOR   = "/"
)

var ErrUntagged = errors.New("taggedsentence: untagged token")

// ParseToken splits word/TAG; the lemma is the lowered word
func ParseToken(s string) (nlp.TaggedToken, error) {
	i := strings.LastIndex(s, TAG_SEPARATOR)
	if i <= 0 || i == len(s)-1 {
		return nlp.TaggedToken{}, fmt.Errorf("%w: %q", ErrUntagged, s)
	}
	token := s[:i]
	return nlp.TaggedToken{Token: token, Lemma: strings.ToLower(token), POS: s[i+1:]}, nil
}

func Read(reader io.Reader) ([]nlp.BasicTaggedSentence, error) {
	var sentences []nlp.BasicTaggedSentence
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		sent := make(nlp.BasicTaggedSentence, len(fields))
		for j, field := range fields {
			tok, err := ParseToken(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			sent[j] = tok
		}
		sentences = append(sentences, sent)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

func ReadFile(filename string) ([]nlp.BasicTaggedSentence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

func Write(writer io.Writer, sents []nlp.TaggedSentence) error {
	w := bufio.NewWriter(writer)
	for _, sent := range sents {
		tokens := sent.TaggedTokens()
		strs := make([]string, len(tokens))
		for i, tok := range tokens {
			strs[i] = tok.Token + TAG_SEPARATOR + tok.POS
		}
		if _, err := w.WriteString(strings.Join(strs, TOKEN_SEPARATOR) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
