package main

import (
	"fmt"
	"os"

	"fjacquet/bank-ingest/cmd/categorize"
	"fjacquet/bank-ingest/cmd/detect"
	"fjacquet/bank-ingest/cmd/export"
	importcmd "fjacquet/bank-ingest/cmd/import"
	"fjacquet/bank-ingest/cmd/parse"
	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/cmd/similar"
	"fjacquet/bank-ingest/cmd/suggest"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(suggest.Cmd)
	root.Cmd.AddCommand(similar.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
