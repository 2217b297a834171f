package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/codec"
	"github.com/skemacore/skemacore/schema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "skemacore CLI\n\nUsage:\n  skemacore check -schema schema.(json|yaml)\n  skemacore validate -schema schema.(json|yaml) [-mode strict|lax] [-fail-fast] [-forbid-dup-keys] [data.json]\n\nWhen no data file is given, validate reads the document from stdin.")
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema description file")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	if _, err := loadSchema(schemaPath); err != nil {
		printIssues(err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath, mode string
	var failFast, forbidDup bool
	fs.StringVar(&schemaPath, "schema", "", "schema description file")
	fs.StringVar(&mode, "mode", "lax", "validation mode: strict or lax")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	fs.BoolVar(&forbidDup, "forbid-dup-keys", false, "reject duplicate object keys in the document")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	c, err := loadSchema(schemaPath)
	if err != nil {
		printIssues(err)
		os.Exit(1)
	}

	opt := skemacore.ValidateOpt{FailFast: failFast, ForbidDuplicateKeys: forbidDup}
	switch mode {
	case "lax":
	case "strict":
		opt.Mode = skemacore.Strict
	default:
		fatalf("unknown mode %q", mode)
	}

	data, err := readDocument(fs.Args())
	if err != nil {
		fatalf("read document: %v", err)
	}
	out, err := c.ValidateJSON(context.Background(), data, opt)
	if err != nil {
		printIssues(err)
		os.Exit(1)
	}
	b, err := c.SerializeJSON(context.Background(), out)
	if err != nil {
		printIssues(err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}

func loadSchema(path string) (skemacore.Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.CompileYAML(data)
	}
	def, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return schema.Compile(def)
}

func readDocument(args []string) ([]byte, error) {
	if len(args) > 0 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func printIssues(err error) {
	iss, ok := skemacore.AsIssues(err)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, it := range iss {
		fmt.Fprintf(os.Stderr, "%s at %s: %s\n", it.Code, it.Path.Pointer(), it.Message)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
