package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// errAborted 用户中断输入 / the user interrupted a prompt
var errAborted = errors.New("input aborted")

type lineInput interface {
	ReadLine(prompt string) (string, error)
	// ReadPassword reads a line without echoing it where the terminal allows.
	ReadPassword(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func newBasicLineInput(in io.Reader, out io.Writer) *basicLineInput {
	return &basicLineInput{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		// 末行没有换行符时仍然接受 / accept a final line without newline
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) ReadPassword(prompt string) (string, error) {
	return b.ReadLine(prompt)
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(in io.ReadCloser, out io.Writer) (*readlineInput, error) {
	instance, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		Stdin:                  in,
		Stdout:                 out,
		Stderr:                 out,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	line, err := r.instance.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errAborted
	}
	return line, err
}

func (r *readlineInput) ReadPassword(prompt string) (string, error) {
	data, err := r.instance.ReadPassword(prompt)
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errAborted
	}
	return string(data), err
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// newLineInput 终端上使用 readline，管道输入退化为逐行读取
// newLineInput uses readline on a terminal and plain line reads otherwise.
// Prompts go to out.
func newLineInput(in io.Reader, out io.Writer) lineInput {
	if f, ok := in.(*os.File); ok && readline.IsTerminal(int(f.Fd())) {
		r, err := newReadlineInput(f, out)
		if err == nil {
			return r
		}
		fmt.Fprintf(out, "line editor unavailable, fallback to basic input: %v\n", err)
	}
	return newBasicLineInput(in, out)
}
