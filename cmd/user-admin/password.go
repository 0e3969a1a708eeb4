package main

import (
	"bufio"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// passwordSource describes where a command reads its password from.
type passwordSource struct {
	Flag     string
	Stdin    bool
	Generate bool
}

func (s passwordSource) validate() error {
	switch {
	case s.Stdin && s.Generate:
		return errors.New("--password-stdin and --generate-password are mutually exclusive")
	case s.Stdin && s.Flag != "":
		return errors.New("--password-stdin and --password are mutually exclusive")
	case s.Generate && s.Flag != "":
		return errors.New("--generate-password and --password are mutually exclusive")
	}
	return nil
}

// resolvePassword returns the password and whether it was generated. With no source
// set it prompts on a terminal; fallback is used when stdin is not a terminal.
func resolvePassword(cmd *cobra.Command, src passwordSource, fallback string) (string, bool, error) {
	if err := src.validate(); err != nil {
		return "", false, err
	}

	switch {
	case src.Stdin:
		raw, err := readPasswordLine(cmd.InOrStdin())
		if err != nil {
			return "", false, err
		}
		if raw == "" {
			return "", false, errors.New("password is empty")
		}
		return raw, false, nil
	case src.Generate:
		password, err := generatePassword(24)
		if err != nil {
			return "", false, err
		}
		return password, true, nil
	case src.Flag != "":
		return src.Flag, false, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if fallback != "" {
			return fallback, false, nil
		}
		return "", false, errors.New("no password provided (use --password or --password-stdin)")
	}

	cmd.Print("Password: ")
	pass, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", false, err
	}
	if len(pass) == 0 {
		return "", false, errors.New("password is empty")
	}
	return string(pass), false, nil
}

func readPasswordLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}

func generatePassword(length int) (string, error) {
	return generatePasswordFrom(rand.Reader, length)
}

// generatePasswordFrom draws each character with rand.Int, which rejects values
// outside the alphabet instead of folding them back with a modulo.
func generatePasswordFrom(r io.Reader, length int) (string, error) {
	if length < 16 {
		return "", errors.New("password length too short")
	}
	const alphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	limit := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
