package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio читает из stdin и пишет в stdout.
// Один bufio.Reader на весь запуск: несколько подсказок подряд не теряют
// буферизованный ввод при чтении из pipe.
type Stdio struct {
	in    *bufio.Reader
	out   io.Writer
	inFd  int
	isTTY func(fd int) bool
}

func NewStdio() IO {
	return &Stdio{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		isTTY: term.IsTerminal,
	}
}

// NewStdioFrom создает Stdio поверх произвольных потоков (не терминал)
func NewStdioFrom(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:    bufio.NewReader(in),
		out:   out,
		inFd:  -1,
		isTTY: func(int) bool { return false },
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

// ReadPassword скрывает ввод на терминале; из pipe пароль читается строкой
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	if !s.isTTY(s.inFd) {
		return s.readLine()
	}

	pwBytes, err := term.ReadPassword(s.inFd)
	s.Println()
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func (s *Stdio) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
