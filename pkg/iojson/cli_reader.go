package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document of type T from the --file flag or,
// when the flag is empty, from piped stdin.
type FileReader[T any] struct {
	fileFlagValue string
	stdin         *os.File
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if piped)",
		Destination: &fr.fileFlagValue,
	}
}

func (fr *FileReader[T]) in() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}

// FromStdin reports whether Read will consume stdin.
func (fr *FileReader[T]) FromStdin() bool {
	return fr.fileFlagValue == "" && !term.IsTerminal(int(fr.in().Fd()))
}

// HasInput reports whether a file was given or stdin is piped.
func (fr *FileReader[T]) HasInput() bool {
	return fr.fileFlagValue != "" || fr.FromStdin()
}

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(fr.in().Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = fr.in()
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
