//go:build mage

package main

import (
	"fmt"
	"os/exec"

	"github.com/magefile/mage/sh"
)

// markitdownImage is the container image used by the markitdown backend.
const markitdownImage = "markitdown:latest"

// Tools reports which text extraction backends are usable on this machine.
func Tools() error {
	found := 0
	for _, tool := range []string{"pdftotext", "pdftohtml"} {
		if path, err := exec.LookPath(tool); err == nil {
			fmt.Printf("  %-12s %s\n", tool, path)
			found++
		} else {
			fmt.Printf("  %-12s missing (install poppler-utils)\n", tool)
		}
	}

	for _, rt := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(rt); err != nil {
			continue
		}
		if err := sh.Run(rt, "image", "inspect", markitdownImage); err == nil {
			fmt.Printf("  %-12s %s via %s\n", "markitdown", markitdownImage, rt)
			found++
		} else {
			fmt.Printf("  %-12s image %s not built (%s)\n", "markitdown", markitdownImage, rt)
		}
		break
	}

	if found == 0 {
		return fmt.Errorf("no text extraction backend available")
	}
	return nil
}
