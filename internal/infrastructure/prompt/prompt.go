// Package prompt reads validated values from an interactive console,
// re-asking until the input is usable.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on out and reads answers line by line from in.
// Every method returns io.EOF once the input is exhausted.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints question and returns the next trimmed line.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Name asks until a non-empty answer is given.
func (p *Prompter) Name(question string) (string, error) {
	for {
		name, err := p.Line(question)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter a name.")
	}
}

// Int asks until the answer is an integer accepted by check. check may be
// nil; its error is printed before asking again.
func (p *Prompter) Int(question, invalid string, check func(int) error) (int, error) {
	for {
		line, err := p.Line(question)
		if err != nil {
			return 0, err
		}
		n, err := ParseInt(line)
		if err != nil {
			fmt.Fprintln(p.out, invalid)
			continue
		}
		if check != nil {
			if err := check(n); err != nil {
				fmt.Fprintf(p.out, "Error: %v.\n", err)
				continue
			}
		}
		return n, nil
	}
}

// Amount asks until the answer is a positive whole amount.
func (p *Prompter) Amount(question string) (int64, error) {
	for {
		line, err := p.Line(question)
		if err != nil {
			return 0, err
		}
		amount, err := ParseAmount(line)
		if err == nil && amount > 0 {
			return amount, nil
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter a positive integer for the amount.")
	}
}

// IsEOF reports whether err means the input ended.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
