//go:build ignore

package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"flag"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type job func(ctx context.Context) error

type compileConfig struct {
	GOOS   string
	GOARCH string
	Test   bool
}

func main() {
	if _, err := os.Stat("cmd/runconv"); err != nil {
		log.Fatalf("Error: cannot find runconv sources. (error: %s)\nAre you running this from the repository root?", err)
	}

	var conf compileConfig
	watch := false
	run := false
	flag.StringVar(&conf.GOARCH, "GOARCH", "", "Cross-compile for architecture")
	flag.StringVar(&conf.GOOS, "GOOS", "", "Cross-compile for operating system")
	flag.BoolVar(&conf.Test, "test", false, "Run the test suite before compiling")
	flag.BoolVar(&watch, "watch", false, "Watch source tree for changes")
	flag.BoolVar(&run, "run", false, "Run runconv upon successful compilation")
	flag.Parse()

	var theJob job

	if run {
		theJob = func(ctx context.Context) error {
			err := compile(ctx, conf)
			if err != nil {
				return err
			}
			runArgs := append([]string{"./" + executableName(conf)}, flag.Args()...)
			return passthru(ctx, runArgs...)
		}
	} else {
		theJob = func(ctx context.Context) error {
			return compile(ctx, conf)
		}
	}

	if watch {
		theJob = watchSourceTree(".", []string{"*.go", "go.mod"}, theJob)
	}

	err := theJob(context.Background())
	if err != nil {
		log.Fatal(err)
	}
}

func executableName(conf compileConfig) string {
	if runtime.GOOS == "windows" || conf.GOOS == "windows" {
		return "runconv.exe"
	}
	return "runconv"
}

func compile(ctx context.Context, conf compileConfig) error {
	if conf.Test {
		if err := passthru(ctx, "go", "test", "./..."); err != nil {
			return errors.WithMessage(err, "tests failed")
		}
	}

	gofiles, err := filepath.Glob("cmd/runconv/*.go")
	if err != nil || gofiles == nil {
		return errors.WithMessage(err, "error: cannot find any go files to compile.")
	}
	compileArgs := append([]string{
		"build", "-o", executableName(conf),
	}, gofiles...)

	compileCmd := exec.CommandContext(ctx, "go", compileArgs...)

	compileCmd.Env = append(compileCmd.Env, os.Environ()...)
	if conf.GOOS != "" {
		compileCmd.Env = append(compileCmd.Env, "GOOS="+conf.GOOS)
	}
	if conf.GOARCH != "" {
		compileCmd.Env = append(compileCmd.Env, "GOARCH="+conf.GOARCH)
	}

	err = passthruCmd(compileCmd)
	if err != nil {
		return errors.WithMessage(err, "compilation failed")
	}

	log.Printf("Compilation finished.")

	return nil
}

func passthru(ctx context.Context, argv ...string) error {
	return passthruCmd(exec.CommandContext(ctx, argv[0], argv[1:]...))
}

func passthruCmd(c *exec.Cmd) error {
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	return c.Run()
}

// Directories that never contain sources. The IDE directories are where
// runconv reads and writes its own files.
var skipDirs = map[string]bool{
	".git":     true,
	".idea":    true,
	".vscode":  true,
	"testdata": true,
}

// watchSourceTree runs childJob, and restarts it whenever a source file
// below root changes.
func watchSourceTree(root string, patterns []string, childJob job) job {
	return func(ctx context.Context) error {
		var mu sync.Mutex
		for {
			lastHash := sourceTreeHash(root, patterns)
			current := lastHash
			cctx, cancel := context.WithCancel(ctx)
			go func() {
				mu.Lock()
				defer mu.Unlock()
				if err := childJob(cctx); err != nil {
					log.Printf("child process: %s", err)
				}
			}()

			for lastHash == current {
				select {
				case <-ctx.Done():
					cancel()
					return ctx.Err()
				case <-time.After(250 * time.Millisecond):
				}
				current = sourceTreeHash(root, patterns)
			}

			log.Printf("Source change detected - rebuilding")
			cancel()
		}
	}
}

// sourceTreeHash hashes the names and contents of all files below root that
// match one of patterns
func sourceTreeHash(root string, patterns []string) string {
	h := sha1.New()
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchesAny(name, patterns) {
			return nil
		}

		io.WriteString(h, p)
		if f, err := os.Open(p); err == nil {
			io.Copy(h, f)
			f.Close()
		}
		return nil
	})
	return hex.EncodeToString(h.Sum(nil))
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
