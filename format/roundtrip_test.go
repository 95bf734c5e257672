package format

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/wat/syntax"
)

var testcasesDir string
var testFilter string

func init() {
	flag.StringVar(&testcasesDir, "testcases", "", "directory containing .wat test files")
	flag.StringVar(&testFilter, "filter", "", "filter test files by substring match on filename")
}

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// TestRoundTrip_Testcases parses every .wat file in the testcases directory,
// encodes the tree as JSON and decodes it again. Each file becomes a subtest:
// go test ./format -run TestRoundTrip_Testcases/valid_add
func TestRoundTrip_Testcases(t *testing.T) {
	dir := testcasesDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		for d := wd; d != "/"; d = filepath.Dir(d) {
			candidate := filepath.Join(d, "testcases")
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				dir = candidate
				break
			}
		}
		if dir == "" {
			t.Skip("testcases directory not found; use -testcases flag to specify")
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".wat") {
			if testFilter != "" && !strings.Contains(path, testFilter) {
				return nil
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk testcases directory: %v", err)
	}
	if len(files) == 0 {
		t.Skipf("no .wat files found in %s", dir)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}
		testName := strings.ReplaceAll(relPath, string(filepath.Separator), "_")
		testName = strings.TrimSuffix(testName, ".wat")

		t.Run(testName, func(t *testing.T) {
			runRoundTripTest(t, file)
		})
	}
}

func runRoundTripTest(t *testing.T, filename string) {
	source, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	doc := NewDocument(filename, string(source))
	if got := doc.Root.Text(); got != string(source) {
		t.Fatalf("tree text differs from source")
	}
	for _, e := range doc.Errors {
		if e.Range.Start < 0 || e.Range.End > len(source) {
			t.Errorf("error %v outside of source", e)
		}
	}
	t.Logf("%d syntax errors", len(doc.Errors))

	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf).Encode(doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeASTJSON(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(doc.Root.Green()) {
		t.Errorf("decoded tree differs from parsed tree")
	}

	diffs := compareNodeCounts(countNodeKinds(doc.Root), countNodeKinds(syntax.NewRoot(decoded)))
	if len(diffs) > 0 {
		t.Errorf("node count mismatch after round trip:\n\n%s", formatDiffs(diffs))
	}
}

// NodeCountDiff is a difference in node counts between two trees.
type NodeCountDiff struct {
	Kind     syntax.SyntaxKind
	Original int
	Decoded  int
}

func countNodeKinds(root *syntax.SyntaxNode) map[syntax.SyntaxKind]int {
	counts := make(map[syntax.SyntaxKind]int)
	it := root.DescendantsWithTokens()
	for it.Next() {
		counts[it.Element().Kind()]++
	}
	return counts
}

func compareNodeCounts(original, decoded map[syntax.SyntaxKind]int) []NodeCountDiff {
	var diffs []NodeCountDiff

	allKinds := make(map[syntax.SyntaxKind]bool)
	for k := range original {
		allKinds[k] = true
	}
	for k := range decoded {
		allKinds[k] = true
	}

	for kind := range allKinds {
		if original[kind] != decoded[kind] {
			diffs = append(diffs, NodeCountDiff{
				Kind:     kind,
				Original: original[kind],
				Decoded:  decoded[kind],
			})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Original-diffs[i].Decoded > diffs[j].Original-diffs[j].Decoded
	})
	return diffs
}

func formatDiffs(diffs []NodeCountDiff) string {
	var sb strings.Builder
	sb.WriteString("Kind                          Original  Decoded  Delta\n")
	sb.WriteString("----------------------------------------------------------\n")
	for _, d := range diffs {
		delta := d.Decoded - d.Original
		sign := "+"
		if delta < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf("%-30s %8d  %7d  %s%d\n",
			d.Kind.String(), d.Original, d.Decoded, sign, delta))
	}
	return sb.String()
}
