// Package main prints the hashed GUIDs catalogs use to refer to bundle
// assets, for checking master index entries by hand.
//
// Usage:
//
//	go run ./tools/hashguid 3f2a9c0d1e4b5a6978c0d1e2f3a4b5c6
//	grep -o '"_editorGuid": "[^"]*"' dump.txt | cut -d'"' -f4 | go run ./tools/hashguid
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1siamBot/asset-exporter/pipeline/checksum"
)

func main() {
	unsigned := flag.Bool("unsigned", false, "Also print the unsigned bit pattern")
	flag.Parse()

	guids := flag.Args()
	if len(guids) == 0 {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				guids = append(guids, line)
			}
		}
		if err := sc.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, g := range guids {
		h, err := checksum.String(g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", g, err)
			failed = true
			continue
		}
		if *unsigned {
			fmt.Printf("%s\t%d\t%08x\n", g, h, uint32(h))
		} else {
			fmt.Printf("%s\t%d\n", g, h)
		}
	}
	if failed {
		os.Exit(1)
	}
}
