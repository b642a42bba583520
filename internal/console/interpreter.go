package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matsen/hbnb/internal/model"
)

// Prompt is printed before each line in interactive mode.
const Prompt = "(hbnb) "

// Interpreter reads command lines and runs them against a Console.
//
// Two forms are accepted:
//
//	update City 1234 name "Paris"
//	City.update("1234", {"name": "Paris", "number_rooms": 3})
type Interpreter struct {
	console *Console

	// Prompt is written before each line; empty disables it.
	Prompt string
}

// NewInterpreter returns an Interpreter over c with the default prompt.
func NewInterpreter(c *Console) *Interpreter {
	return &Interpreter{console: c, Prompt: Prompt}
}

// Run reads lines from in until quit, EOF, end of input or cancellation of
// ctx. Results and usage messages go to out. Failed saves are reported and
// the loop continues.
func (it *Interpreter) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if it.Prompt != "" {
			fmt.Fprint(out, it.Prompt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				return nil
			}
			quit, err := it.Execute(line, out)
			if err != nil {
				fmt.Fprintf(out, "*** %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs one line and writes its output to out. It reports whether
// the line asked to quit. Usage errors are written to out and not
// returned; a returned error means a mutation could not be saved.
func (it *Interpreter) Execute(line string, out io.Writer) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	var err error
	if cl, ok := parseCall(line); ok {
		err = it.dispatchCall(cl, out)
	} else {
		var quit bool
		quit, err = it.dispatchPlain(line, out)
		if quit {
			return true, nil
		}
	}

	var ue *UsageError
	if errors.As(err, &ue) {
		fmt.Fprintln(out, ue.Msg)
		return false, nil
	}
	return false, err
}

func (it *Interpreter) dispatchPlain(line string, out io.Writer) (bool, error) {
	words, err := SplitWords(line)
	if err != nil || len(words) == 0 {
		return false, usagef(msgUnknownSyntax, line)
	}
	arg := func(i int) string {
		if i < len(words) {
			return words[i]
		}
		return ""
	}

	c := it.console
	switch words[0] {
	case "quit", "EOF":
		return true, nil
	case "create":
		id, err := c.Create(arg(1))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, id)
	case "show":
		s, err := c.Show(arg(1), arg(2))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, s)
	case "destroy":
		return false, c.Destroy(arg(1), arg(2))
	case "all":
		return false, it.printAll(arg(1), out)
	case "count":
		n, err := c.Count(arg(1))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, n)
	case "update":
		return false, it.updatePlain(line, words)
	default:
		return false, usagef(msgUnknownSyntax, line)
	}
	return false, nil
}

// updatePlain handles "update <class> <id> <attr> <value>" and
// "update <class> <id> {<dict>}".
func (it *Interpreter) updatePlain(line string, words []string) error {
	var kindName, id string
	if len(words) > 1 {
		kindName = words[1]
	}
	if len(words) > 2 {
		id = words[2]
	}
	if len(words) > 3 && strings.HasPrefix(words[3], "{") {
		if _, err := it.console.lookup(kindName, id); err != nil {
			return err
		}
		attrs, err := ParseDict(line[strings.Index(line, "{"):])
		if err != nil {
			return &UsageError{Msg: MsgInvalidDict, Err: err}
		}
		return it.console.UpdateBatch(kindName, id, attrs)
	}

	args := make([]any, 0, 2)
	for _, w := range words[min(3, len(words)):min(5, len(words))] {
		args = append(args, w)
	}
	return it.console.Update(kindName, id, args...)
}

func (it *Interpreter) printAll(kindName string, out io.Writer) error {
	reprs, err := it.console.All(kindName)
	if err != nil {
		return err
	}
	items := make([]any, len(reprs))
	for i, r := range reprs {
		items[i] = r
	}
	fmt.Fprintln(out, model.FormatLiteral(items))
	return nil
}

// call is a parsed "Class.method(args)" line.
type call struct {
	line   string
	class  string
	method string
	args   string
}

// parseCall recognizes the dotted form. The class ends at the first '.',
// the method at the next '(' and the arguments at the last ')'.
func parseCall(line string) (call, bool) {
	dot := strings.Index(line, ".")
	open := strings.Index(line, "(")
	closing := strings.LastIndex(line, ")")
	if dot <= 0 || open < dot || closing < open {
		return call{}, false
	}
	if strings.TrimSpace(line[closing+1:]) != "" {
		return call{}, false
	}
	class := line[:dot]
	if strings.ContainsAny(class, " \t") {
		return call{}, false
	}
	return call{
		line:   line,
		class:  class,
		method: strings.TrimSpace(line[dot+1 : open]),
		args:   line[open+1 : closing],
	}, true
}

func (it *Interpreter) dispatchCall(cl call, out io.Writer) error {
	c := it.console
	switch cl.method {
	case "all":
		return it.printAll(cl.class, out)
	case "count":
		n, err := c.Count(cl.class)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil
	case "create":
		id, err := c.Create(cl.class)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		return nil
	case "show", "destroy", "update":
	default:
		return usagef(msgUnknownSyntax, cl.line)
	}

	args, err := ParseArgs(cl.args)
	if err != nil {
		if cl.method == "update" && strings.Contains(cl.args, "{") {
			return &UsageError{Msg: MsgInvalidDict, Err: err}
		}
		return usagef(msgUnknownSyntax, cl.line)
	}
	var id string
	if len(args) > 0 {
		id = argString(args[0])
	}

	switch cl.method {
	case "show":
		s, err := c.Show(cl.class, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	case "destroy":
		return c.Destroy(cl.class, id)
	}

	if len(args) > 1 {
		switch v := args[1].(type) {
		case map[string]any:
			return c.UpdateBatch(cl.class, id, v)
		case []any:
			if len(args) == 2 {
				return usage(MsgInvalidDict)
			}
		}
	}
	if len(args) > 1 {
		return c.Update(cl.class, id, args[1:]...)
	}
	return c.Update(cl.class, id)
}
