package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ssargent/stockroom/pkg/model"
)

// prompter reads validated answers line by line, asking again until the
// answer is acceptable. It returns io.EOF when input runs out.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// line prints prompt and returns the next line with surrounding space removed
func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(p.out)
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// text asks until a non-empty answer is given
func (p *prompter) text(prompt string) (string, error) {
	for {
		answer, err := p.line(prompt)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, "Input cannot be empty. Please try again.")
	}
}

// integer asks until a non-negative whole number is given
func (p *prompter) integer(prompt string) (int, error) {
	for {
		answer, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(answer)
		if err == nil && value >= 0 && value <= model.MaxQuantity {
			return value, nil
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter a non-negative whole number.")
	}
}

// amount asks until a non-negative finite number is given
func (p *prompter) amount(prompt string) (float64, error) {
	for {
		answer, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		value, err := strconv.ParseFloat(answer, 64)
		if err == nil && value >= 0 && !math.IsInf(value, 0) {
			return value, nil
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter a non-negative number.")
	}
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (p *prompter) confirm(prompt string) (bool, error) {
	answer, err := p.line(prompt + " (y/n): ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
