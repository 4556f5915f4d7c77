package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextenginehq/context-core/internal/testutil"
)

type buildOutput struct {
	OK           bool   `json:"ok"`
	Path         string `json:"path"`
	CacheVersion string `json:"cache_version"`
	Documents    int    `json:"documents"`
}

func runCommand(t *testing.T, binary string, arguments ...string) (string, int) {
	t.Helper()
	// #nosec G204 -- test drives the freshly built binary with fixed arguments.
	command := exec.Command(binary, arguments...)
	out, err := command.CombinedOutput()
	if err == nil {
		return string(out), 0
	}
	return string(out), testutil.CommandExitCode(t, err)
}

func TestBuildSelectVerifyLifecycle(t *testing.T) {
	root := testutil.RepoRoot(t)
	binary := testutil.BuildCtxcoreBinary(t, root)

	workDir := t.TempDir()
	docsDir := filepath.Join(workDir, "docs")
	testutil.WriteFile(t, filepath.Join(docsDir, "guide.md"), []byte("Deployment is automated."))
	testutil.WriteFile(t, filepath.Join(docsDir, "notes", "ops.md"), []byte("Operations runbook for deployment."))
	cacheDir := filepath.Join(workDir, "cache")

	buildOut, exitCode := runCommand(t, binary, "build", "--root", docsDir, "--out", cacheDir, "--json")
	if exitCode != 0 {
		t.Fatalf("build failed (%d): %s", exitCode, buildOut)
	}
	var built buildOutput
	if err := json.Unmarshal([]byte(buildOut), &built); err != nil {
		t.Fatalf("parse build output: %v\n%s", err, buildOut)
	}
	if !built.OK || built.Documents != 2 {
		t.Fatalf("unexpected build output: %+v", built)
	}
	if !strings.HasPrefix(built.CacheVersion, "sha256:") {
		t.Fatalf("unexpected cache version: %s", built.CacheVersion)
	}

	receiptPath := filepath.Join(workDir, "receipt.json")
	selectOut, exitCode := runCommand(t, binary, "select",
		"--cache", cacheDir, "--query", "deployment", "--budget", "4000", "--receipt", receiptPath)
	if exitCode != 0 {
		t.Fatalf("select failed (%d): %s", exitCode, selectOut)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(selectOut), &result); err != nil {
		t.Fatalf("parse selection result: %v\n%s", err, selectOut)
	}
	selectionAny, ok := result["selection"].(map[string]any)
	if !ok {
		t.Fatalf("missing selection block: %s", selectOut)
	}
	if considered := selectionAny["documents_considered"].(float64); considered != 2 {
		t.Fatalf("expected 2 considered, got %v", considered)
	}
	if _, err := os.Stat(receiptPath); err != nil {
		t.Fatalf("receipt not written: %v", err)
	}

	verifyOut, exitCode := runCommand(t, binary, "verify", "--cache", cacheDir, "--json")
	if exitCode != 0 {
		t.Fatalf("verify failed (%d): %s", exitCode, verifyOut)
	}

	// Rebuilding into the same directory must refuse.
	rebuildOut, exitCode := runCommand(t, binary, "build", "--root", docsDir, "--out", cacheDir, "--json")
	if exitCode != 2 {
		t.Fatalf("expected invalid input exit for existing output, got %d: %s", exitCode, rebuildOut)
	}
}

func TestVerifyFailsOnTamperedCache(t *testing.T) {
	root := testutil.RepoRoot(t)
	binary := testutil.BuildCtxcoreBinary(t, root)

	workDir := t.TempDir()
	docsDir := filepath.Join(workDir, "docs")
	testutil.WriteFile(t, filepath.Join(docsDir, "guide.md"), []byte("Deployment is automated."))
	cacheDir := filepath.Join(workDir, "cache")

	if out, exitCode := runCommand(t, binary, "build", "--root", docsDir, "--out", cacheDir, "--json"); exitCode != 0 {
		t.Fatalf("build failed (%d): %s", exitCode, out)
	}

	documentsDir := filepath.Join(cacheDir, "documents")
	entries, err := os.ReadDir(documentsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one document file: %v", err)
	}
	target := filepath.Join(documentsDir, entries[0].Name())
	original := testutil.MustReadFile(t, target)
	tampered := strings.Replace(string(original), "automated", "sabotaged", 1)
	if err := os.WriteFile(target, []byte(tampered), 0o644); err != nil {
		t.Fatalf("tamper document: %v", err)
	}

	verifyOut, exitCode := runCommand(t, binary, "verify", "--cache", cacheDir, "--json")
	if exitCode != 3 {
		t.Fatalf("expected verify-failed exit 3, got %d: %s", exitCode, verifyOut)
	}
	if !strings.Contains(verifyOut, "hash_mismatches") {
		t.Fatalf("expected hash mismatches in report: %s", verifyOut)
	}
}

func TestSelectRejectsNegativeBudget(t *testing.T) {
	root := testutil.RepoRoot(t)
	binary := testutil.BuildCtxcoreBinary(t, root)

	workDir := t.TempDir()
	docsDir := filepath.Join(workDir, "docs")
	testutil.WriteFile(t, filepath.Join(docsDir, "guide.md"), []byte("Deployment is automated."))
	cacheDir := filepath.Join(workDir, "cache")
	if out, exitCode := runCommand(t, binary, "build", "--root", docsDir, "--out", cacheDir, "--json"); exitCode != 0 {
		t.Fatalf("build failed (%d): %s", exitCode, out)
	}

	out, exitCode := runCommand(t, binary, "select", "--cache", cacheDir, "--query", "x", "--budget", "-1")
	if exitCode != 2 {
		t.Fatalf("expected invalid input exit, got %d: %s", exitCode, out)
	}
}
