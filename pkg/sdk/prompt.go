package sdk

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user a yes/no question
type Prompter interface {
	Confirm(question string) (bool, error)
}

// ReaderPrompter reads the answer from a line-oriented reader, usually stdin.
// Only "y" and "yes" (any case) confirm; end of input declines.
type ReaderPrompter struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewReaderPrompter creates a prompter reading from in and asking on out
func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{out: out, reader: bufio.NewReader(in)}
}

func (p *ReaderPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintln(p.out, question)
	fmt.Fprint(p.out, "Y/N: ")

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AssumeYesPrompter confirms every question without reading input
type AssumeYesPrompter struct {
	Out io.Writer
}

func (p AssumeYesPrompter) Confirm(question string) (bool, error) {
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s\nY/N: y (assumed)\n", question)
	}
	return true, nil
}
