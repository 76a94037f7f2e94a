package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type lineResult struct {
	line string
	err  error
}

// Prompter asks the operator for input. Reads honor context cancellation so a
// signal at a prompt ends the program.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal behind in, or -1 when input is piped.
	fd      int
	pending chan lineResult
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine(ctx)
}

// AskRequired repeats the question until the answer is not blank.
func (p *Prompter) AskRequired(ctx context.Context, label string) (string, error) {
	for {
		answer, err := p.Ask(ctx, label)
		if err != nil || answer != "" {
			return answer, err
		}
	}
}

// Secret reads a value without echo when input is a terminal.
func (p *Prompter) Secret(ctx context.Context, label string) (string, error) {
	if p.fd < 0 {
		return p.AskRequired(ctx, label)
	}
	for {
		fmt.Fprint(p.out, label)
		raw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		if secret := strings.TrimSpace(string(raw)); secret != "" {
			return secret, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}
