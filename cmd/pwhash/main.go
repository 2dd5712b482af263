package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/achuala/go-pwhash/pkg/conf"
)

const usage = `usage: pwhash -conf <file> hash
       pwhash -conf <file> compare <stored-hash>`

func main() {
	confPath := flag.String("conf", "configs/config.yaml", "config file path")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	logger := log.With(log.NewStdLogger(os.Stderr), "ts", log.DefaultTimestamp)
	code, err := run(context.Background(), *confPath, flag.Args(), os.Stdin, os.Stdout, logger)
	if err != nil {
		log.NewHelper(logger).Errorf("%+v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, confPath string, args []string, in *os.File, out io.Writer, logger log.Logger) (int, error) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2, nil
	}

	c, err := conf.Load(confPath)
	if err != nil {
		return 1, err
	}
	registry, err := conf.NewRegistry(c, logger)
	if err != nil {
		return 1, err
	}

	switch args[0] {
	case "hash":
		password, err := readPassword(in)
		if err != nil {
			return 1, err
		}
		encoded, err := registry.Generate(ctx, password)
		if err != nil {
			return 1, err
		}
		fmt.Fprintln(out, string(encoded))
		return 0, nil
	case "compare":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2, nil
		}
		password, err := readPassword(in)
		if err != nil {
			return 1, err
		}
		ok, err := registry.Verify(ctx, password, []byte(args[1]))
		if err != nil {
			return 1, err
		}
		if !ok {
			fmt.Fprintln(out, "mismatch")
			return 1, nil
		}
		fmt.Fprintln(out, "match")
		if registry.NeedsRehash([]byte(args[1])) {
			log.NewHelper(logger).Info("stored hash uses outdated parameters, rehash on next login")
		}
		return 0, nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2, nil
	}
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in *os.File) ([]byte, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		p, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return p, errors.Wrap(err, "read password")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read password")
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
