package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/confclass/confclass"
	"github.com/confclass/confclass/format"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "convert":
		convertCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "confclass CLI\n\nUsage:\n  confclass convert -in config.toml -out config.json [-toml-null null]\n\nRe-encodes a raw config document between formats. The format is\ninferred from the file extension (.json, .toml, .yaml/.yml).")
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var in, out, tomlNull string
	fs.StringVar(&in, "in", "", "input config file")
	fs.StringVar(&out, "out", "", "output config file")
	fs.StringVar(&tomlNull, "toml-null", format.DefaultTOMLNull, "sentinel string for null values in TOML files")
	_ = fs.Parse(args)
	if in == "" || out == "" {
		fs.Usage()
		os.Exit(2)
	}

	inFmt, err := formatFor(in, tomlNull)
	if err != nil {
		fatalf("%v", err)
	}
	outFmt, err := formatFor(out, tomlNull)
	if err != nil {
		fatalf("%v", err)
	}

	doc, err := inFmt.Read(in)
	if err != nil {
		fatalf("read %s: %v", in, err)
	}
	if doc == nil {
		fatalf("read %s: no such file", in)
	}
	if err := outFmt.Write(out, doc); err != nil {
		fatalf("write %s: %v", out, err)
	}
}

func formatFor(path, tomlNull string) (confclass.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return format.JSON(), nil
	case ".toml":
		return format.TOML(format.TOMLNull(tomlNull)), nil
	case ".yaml", ".yml":
		return format.YAML(), nil
	}
	return nil, fmt.Errorf("%s: cannot infer format from extension", path)
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
