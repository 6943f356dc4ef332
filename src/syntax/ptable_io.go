package syntax

import (
	"bufio"
	"encoding/gob"
	"errors"
	"io"
	"os"
)

// LoadTable decodes a parsing table previously written by SaveTable
func LoadTable(r io.Reader) (*ParsingTable, error) {
	pt := &ParsingTable{}

	if err := gob.NewDecoder(bufio.NewReader(r)).Decode(pt); err != nil {
		return nil, err
	}

	if len(pt.Rows) == 0 || pt.End == "" {
		return nil, errors.New("parsing table is empty")
	}

	return pt, nil
}

// SaveTable encodes a parsing table to w
func SaveTable(w io.Writer, pt *ParsingTable) error {
	bw := bufio.NewWriter(w)

	if err := gob.NewEncoder(bw).Encode(pt); err != nil {
		return err
	}

	return bw.Flush()
}

// LoadTableFile loads a parsing table from the file at path
func LoadTableFile(path string) (*ParsingTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()
	return LoadTable(file)
}

// SaveTableFile dumps a parsing table into the file at path.  If the file does
// not exist, it is created.  If it does exist, it is truncated.
func SaveTableFile(path string, pt *ParsingTable) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := SaveTable(file, pt); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
