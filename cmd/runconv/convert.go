package main

import (
	"fmt"
	"log"

	tc "github.com/thijzert/go-termcolours"
	runconv "github.com/thijzert/runconv/pkg"
)

func convert(source, destination string) (string, error) {
	// Fail early, before spending any time parsing
	if _, err := runconv.ResolveDestination(destination); err != nil {
		return "", err
	}

	src, err := runconv.Extract(source)
	if err != nil {
		return "", err
	}

	for _, e := range src.Errors() {
		log.Printf("%s %s", tc.Red("error:"), e)
	}

	if !Config.Quiet {
		for _, pw := range src.Workspaces {
			if pw.Error != nil {
				continue
			}
			log.Printf("%s: %s%s", pw.Filename, tc.Green(fmt.Sprintf("%d converted", len(pw.Configurations))), skipped(pw.Skipped))
		}
	}

	return runconv.ConvertLaunchFile(src, destination, Config.Strict)
}

func skipped(n int) string {
	if n == 0 {
		return ""
	}
	return ", " + tc.Bblack(fmt.Sprintf("%d skipped", n))
}
