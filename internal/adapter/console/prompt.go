// Package console asks an operator on a terminal to choose the ENGM runway
// configuration.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

type lineResult struct {
	line string
	err  error
}

// Prompter reads operator choices line by line from in and writes prompts to
// out. It implements domain.OperatorPrompter.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// pending holds a read that outlived a cancelled context, so the next
	// prompt consumes that line instead of losing it.
	pending chan lineResult
}

// NewPrompter creates a Prompter, typically over os.Stdin and os.Stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ChooseConfiguration prints the METAR and the numbered options, then waits
// for one line of input.
func (p *Prompter) ChooseConfiguration(ctx context.Context, req domain.OperatorRequest) (int, error) {
	if req.Attempt <= 1 {
		p.printRequest(req)
	} else {
		fmt.Fprintf(p.out, "Invalid choice. Please enter a number between 1 and %d.\n", len(req.Options))
	}
	fmt.Fprintf(p.out, "Enter choice (1-%d): ", len(req.Options))

	line, err := p.readLine(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidOperatorInput, strings.TrimSpace(line))
	}
	return n, nil
}

func (p *Prompter) printRequest(req domain.OperatorRequest) {
	fmt.Fprintf(p.out, "\n%s current conditions: %s\n", req.ICAO, req.METAR)
	if req.Cause != "" {
		fmt.Fprintf(p.out, "Automatic selection not possible: %s\n", req.Cause)
	}
	if req.SuggestedOrientation != "" {
		fmt.Fprintf(p.out, "Suggested orientation: %s\n", req.SuggestedOrientation)
	}
	fmt.Fprintln(p.out, "Select runway configuration:")
	for _, opt := range req.Options {
		fmt.Fprintf(p.out, "%d. %s\n", opt.Number, opt.Label)
	}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			if errors.Is(err, io.EOF) && line != "" {
				err = nil
			}
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil {
			return "", fmt.Errorf("read operator input: %w", r.err)
		}
		return r.line, nil
	}
}
