package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	toskema "github.com/reoring/toskema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		validateCmd(os.Args[2:])
	case "complete":
		completeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "toskema CLI\n\nUsage:\n  toskema validate -schema schema.toml data.toml [data2.toml ...]\n  toskema complete -schema schema.toml data.toml\n\nNotes:\n  - Schema and data formats are chosen by file extension (.toml/.json/.yaml/.yml).\n  - complete prints the default-completed document as TOML on stdout.")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema document file")
	_ = fs.Parse(args)
	if schemaPath == "" || fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	schema := mustCompile(schemaPath)

	failed := false
	for _, path := range fs.Args() {
		doc, err := loadDoc(path)
		if err != nil {
			fatalf("%s: %v", path, err)
		}
		if err := schema.Check(doc); err != nil {
			fmt.Fprintf(os.Stderr, "invalid\t%s\t%v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("ok\t%s\n", path)
	}
	if failed {
		os.Exit(1)
	}
}

func completeCmd(args []string) {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema document file")
	_ = fs.Parse(args)
	if schemaPath == "" || fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	schema := mustCompile(schemaPath)

	path := fs.Arg(0)
	doc, err := loadDoc(path)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	if err := schema.CheckAndComplete(doc); err != nil {
		fmt.Fprintf(os.Stderr, "invalid\t%s\t%v\n", path, err)
		os.Exit(1)
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		fatalf("encoding completed document: %v", err)
	}
	os.Stdout.Write(out)
}

func mustCompile(path string) *toskema.Schema {
	b, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	warn := func(msg string) { fmt.Fprintf(os.Stderr, "warning\t%s\t%s\n", path, msg) }
	var schema *toskema.Schema
	switch ext(path) {
	case ".toml":
		schema, _, err = toskema.CompileTOML(b, toskema.WithWarnHandler(warn))
	case ".json":
		schema, _, err = toskema.CompileJSON(b, toskema.WithWarnHandler(warn))
	case ".yaml", ".yml":
		schema, _, err = toskema.CompileYAML(b, toskema.WithWarnHandler(warn))
	default:
		fatalf("unsupported schema format %q", ext(path))
	}
	if err != nil {
		fatalf("compiling %s: %v", path, err)
	}
	return schema
}

func loadDoc(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext(path) {
	case ".toml":
		return toskema.DecodeTOML(b)
	case ".json":
		return toskema.DecodeJSON(b)
	case ".yaml", ".yml":
		return toskema.DecodeYAML(b)
	default:
		return nil, fmt.Errorf("unsupported document format %q", ext(path))
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(2)
}
