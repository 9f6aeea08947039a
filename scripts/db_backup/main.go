package main

import (
	"fmt"
	"io"
	"os"

	"github.com/coderr-app/backend/internal/config"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	src := cfg.DatabasePath
	dst := src + ".bak"

	if _, err := os.Stat(src); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "No database at %s; run scripts/db_init first\n", src)
		os.Exit(1)
	}

	n, err := copyFile(src, dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Backed up %s to %s (%d bytes)\n", src, dst, n)
}

func copyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, err
	}
	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		return n, err
	}

	return n, dstFile.Close()
}
