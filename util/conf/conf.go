package conf

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Conf is a plain-text list of values, one per line; empty lines and
// lines starting with '#' are skipped
type Conf struct {
	Values []string
}

func Read(reader io.Reader) (*Conf, error) {
	scanner := bufio.NewScanner(reader)
	retval := make([]string, 0, 64)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 0 && line[0] != '#' {
			retval = append(retval, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Conf{retval}, nil
}

func ReadFile(filename string) (*Conf, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}
