package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DrillResult reports the artifacts of a restore drill.
type DrillResult struct {
	Archive    string
	RestoreDir string
	Digest     string
}

// Drill backs up the data dir, restores it into a scratch directory, and
// verifies the restored tree hashes identically to the source. A failing
// drill means backups cannot be trusted.
func Drill(dataDir, workDir string) (DrillResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return DrillResult{}, err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	res := DrillResult{
		Archive:    filepath.Join(workDir, "eisendo-drill-"+ts+".tar.gz"),
		RestoreDir: filepath.Join(workDir, "eisendo-drill-restore-"+ts),
	}

	if err := Backup(dataDir, res.Archive); err != nil {
		return res, err
	}
	if err := Restore(res.Archive, res.RestoreDir); err != nil {
		return res, err
	}

	srcDigest, err := DirDigest(dataDir)
	if err != nil {
		return res, err
	}
	restoredDigest, err := DirDigest(res.RestoreDir)
	if err != nil {
		return res, err
	}
	if srcDigest != restoredDigest {
		return res, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoredDigest)
	}
	res.Digest = srcDigest
	return res, nil
}

// DirDigest hashes every regular file under root, in sorted relative-path
// order, into one hex digest.
func DirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
