package main

import (
	"log"
	"os"

	"github.com/vshulcz/Countra/pkg/util"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	util.PrintBuildInfo(buildVersion, buildDate, buildCommit)

	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
