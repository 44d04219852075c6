package conll

// Package Conll reads ConLL format files
// For a description see http://ilk.uvt.nl/conll/#dataformat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"sbparse/nlp/parser/dependency/transition"
	nlp "sbparse/nlp/types"
)

const (
	FIELD_SEPARATOR      = '\t'
	NUM_FIELDS           = 10
	FEATURES_SEPARATOR   = "|"
	FEATURE_SEPARATOR    = "="
	FEATURE_CONCAT_DELIM = ","
)

var (
	ErrFieldCount = errors.New("conll: wrong number of fields")
	ErrRowOrder   = errors.New("conll: row ids are not consecutive")
)

type Features map[string]string

func (f Features) String() string {
	return FormatFeatures(f)
}

func FormatFeatures(feat map[string]string) string {
	if len(feat) == 0 {
		return "_"
	}
	strs := make([]string, 0, len(feat))
	for k, v := range feat {
		strs = append(strs, fmt.Sprintf("%v%v%v", k, FEATURE_SEPARATOR, v))
	}
	sort.Strings(strs)
	return strings.Join(strs, FEATURES_SEPARATOR)
}

// A Row is a single parsed row of a conll data set
// *Commented fields are not in use
type Row struct {
	ID      int
	Form    string
	Lemma   string
	CPosTag string
	PosTag  string
	Feats   Features
	Head    int
	DepRel  string
	// PHead int
	// PDepRel string
}

func formatString(value string) string {
	if value == "" {
		return "_"
	}
	return value
}

func (r Row) String() string {
	fields := []string{
		strconv.Itoa(r.ID),
		r.Form,
		formatString(r.Lemma),
		formatString(r.CPosTag),
		formatString(r.PosTag),
		FormatFeatures(r.Feats),
		strconv.Itoa(r.Head),
		formatString(r.DepRel),
		"_",
		"_"}
	return strings.Join(fields, string(FIELD_SEPARATOR))
}

// A Sentence is a map of Rows using their ids
type Sentence map[int]Row

type Sentences []Sentence

func ParseInt(value string) (int, error) {
	if value == "_" {
		return 0, nil
	}
	i, err := strconv.ParseInt(value, 10, 0)
	return int(i), err
}

func ParseString(value string) string {
	if value == "_" {
		return ""
	}
	return value
}

func ParseFeatures(featuresStr string) (Features, error) {
	var featureMap Features
	if featuresStr == "_" || featuresStr == "" {
		return featureMap, nil
	}

	featureList := strings.Split(featuresStr, FEATURES_SEPARATOR)
	featureMap = make(Features, len(featureList))
	for _, featureStr := range featureList {
		featureKV := strings.Split(featureStr, FEATURE_SEPARATOR)
		if len(featureKV) != 2 {
			return nil, fmt.Errorf("wrong number of fields for split of feature %s", featureStr)
		}
		featName := featureKV[0]
		featValue := featureKV[1]
		existingFeatValue, featExist := featureMap[featName]
		if featExist {
			featureMap[featName] = existingFeatValue + FEATURE_CONCAT_DELIM + featValue
		} else {
			featureMap[featName] = featValue
		}
	}
	return featureMap, nil
}

// ParseRow parses the fields of one line. Unparsed sentences leave HEAD
// and DEPREL as "_".
func ParseRow(record []string) (Row, error) {
	var row Row
	if len(record) < 8 {
		return row, fmt.Errorf("%w: %d", ErrFieldCount, len(record))
	}
	id, err := ParseInt(record[0])
	if err != nil {
		return row, fmt.Errorf("error parsing ID field (%s): %w", record[0], err)
	}
	row.ID = id

	form := ParseString(record[1])
	if form == "" {
		return row, errors.New("empty FORM field")
	}
	row.Form = form
	row.Lemma = ParseString(record[2])

	cpostag := ParseString(record[3])
	if cpostag == "" {
		return row, errors.New("empty CPOSTAG field")
	}
	row.CPosTag = cpostag

	row.PosTag = ParseString(record[4])
	if row.PosTag == "" {
		row.PosTag = cpostag
	}

	features, err := ParseFeatures(record[5])
	if err != nil {
		return row, fmt.Errorf("error parsing FEATS field (%s): %w", record[5], err)
	}
	row.Feats = features

	if record[6] == "_" {
		row.Head = -1
	} else {
		head, err := ParseInt(record[6])
		if err != nil {
			return row, fmt.Errorf("error parsing HEAD field (%s): %w", record[6], err)
		}
		row.Head = head
	}
	row.DepRel = ParseString(record[7])
	return row, nil
}

// Read reads blank line separated sentences
func Read(reader io.Reader) (Sentences, error) {
	var (
		sentences   Sentences
		currentSent Sentence
		lineNum     int
	)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if currentSent != nil {
				sentences = append(sentences, currentSent)
				currentSent = nil
			}
			continue
		}
		record := strings.Split(line, string(FIELD_SEPARATOR))
		if len(record) != NUM_FIELDS {
			return nil, fmt.Errorf("line %d at sentence %d: %w: %d", lineNum, len(sentences), ErrFieldCount, len(record))
		}
		row, err := ParseRow(record)
		if err != nil {
			return nil, fmt.Errorf("error processing line %d at sentence %d: %w", lineNum, len(sentences), err)
		}
		if currentSent == nil {
			currentSent = make(Sentence)
		}
		if row.ID != len(currentSent)+1 {
			return nil, fmt.Errorf("line %d at sentence %d: %w: got %d", lineNum, len(sentences), ErrRowOrder, row.ID)
		}
		currentSent[row.ID] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failure reading delimited file: %w", err)
	}
	if currentSent != nil {
		sentences = append(sentences, currentSent)
	}
	return sentences, nil
}

func ReadFile(filename string) (Sentences, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

func Write(writer io.Writer, sents Sentences) error {
	w := bufio.NewWriter(writer)
	for _, sent := range sents {
		for i := 1; i <= len(sent); i++ {
			if _, err := w.WriteString(sent[i].String() + "\n"); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

func WriteFile(filename string, sents Sentences) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return Write(file, sents)
}

// Conll2Tree builds a tree over the rows of sent. Heads and labels present in
// the rows are kept; the secondary tag travels in FEATS as p2.
func Conll2Tree(sent Sentence) (*transition.DepTree, error) {
	tokens := make(nlp.BasicTaggedSentence, len(sent))
	for i := 1; i <= len(sent); i++ {
		row, exists := sent[i]
		if !exists {
			return nil, fmt.Errorf("%w: missing row %d", ErrRowOrder, i)
		}
		lemma := row.Lemma
		if lemma == "" {
			lemma = strings.ToLower(row.Form)
		}
		tokens[i-1] = nlp.TaggedToken{Token: row.Form, Lemma: lemma, POS: row.PosTag}
	}
	tree := transition.NewDepTree(tokens)
	for i := 1; i <= len(sent); i++ {
		row := sent[i]
		for k, v := range row.Feats {
			tree.Nodes[i].SetFeat(k, v)
		}
		if row.Head < 0 || row.DepRel == "" {
			continue
		}
		if err := tree.SetHead(i, row.Head, row.DepRel); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tree, nil
}

func Tree2Conll(tree *transition.DepTree) Sentence {
	sent := make(Sentence, tree.Len()-1)
	for _, node := range tree.Nodes[1:] {
		row := Row{
			ID:      node.Id,
			Form:    node.Token,
			Lemma:   node.Lemma,
			CPosTag: node.POS,
			PosTag:  node.POS,
			Head:    node.Head,
			DepRel:  node.Label,
		}
		if len(node.Feats) > 0 {
			row.Feats = make(Features, len(node.Feats))
			for k, v := range node.Feats {
				row.Feats[k] = v
			}
		}
		if !node.HasHead() {
			row.Head = 0
		}
		sent[row.ID] = row
	}
	return sent
}
