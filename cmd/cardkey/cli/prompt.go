package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ask prints question and reads one line from in. Piped input is accepted
// the same way as a typed answer; EOF without input yields "".
func ask(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// affirmative reports whether an answer from ask confirms. Only "y" and
// "yes" do.
func affirmative(answer string) bool {
	return answer == "y" || answer == "yes"
}
