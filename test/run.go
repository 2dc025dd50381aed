package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/synan/internal/compiler"
	"github.com/arnavsurve/synan/internal/compiler/diag"
)

const (
	goodDir = "tests/good/programs"
	badDir  = "tests/bad/programs"
)

// Bad programs are named after the error they must raise.
var expectedKinds = map[string]diag.Kind{
	"illegal_string": diag.IllegalStringOperation,
	"uninitialised":  diag.UninitialisedVariable,
	"unexpected":     diag.UnexpectedSymbol,
}

type testResult struct {
	fileName string
	passed   bool
	output   string // failure detail
	isGood   bool
}

func main() {
	var failedTests []testResult

	fmt.Println("🔍 Running good tests:")
	goodPassed, goodFailed := 0, 0
	for _, res := range runDir(goodDir, true) {
		if res.passed {
			fmt.Printf("  ✅ %s\n", res.fileName)
			goodPassed++
		} else {
			fmt.Printf("  ❌ %s\n", res.fileName)
			goodFailed++
			failedTests = append(failedTests, res)
		}
	}

	fmt.Println("\n💥 Running bad tests:")
	badPassed, badFailed := 0, 0
	for _, res := range runDir(badDir, false) {
		if res.passed {
			fmt.Printf("  ✅ %s (Failed as expected)\n", res.fileName)
			badPassed++
		} else {
			fmt.Printf("  ❌ %s (Unexpected Result)\n", res.fileName)
			badFailed++
			failedTests = append(failedTests, res)
		}
	}

	if len(failedTests) > 0 {
		fmt.Println("\n--- Detailed Failures ---")
		for _, failure := range failedTests {
			fmt.Printf("\n❌ Test: %s (%s)\n", failure.fileName, map[bool]string{true: "Good Test", false: "Bad Test"}[failure.isGood])
			fmt.Println("Reason:")
			fmt.Println(failure.output)
			fmt.Println("---")
		}
	}

	fmt.Println("\n--------------------")
	fmt.Printf("Good Tests Summary: ✅ Passed: %d | ❌ Failed: %d\n", goodPassed, goodFailed)
	fmt.Printf("Bad Tests Summary:  ✅ Passed: %d | ❌ Failed: %d\n", badPassed, badFailed)
	fmt.Println("--------------------")

	if goodFailed > 0 || badFailed > 0 {
		fmt.Println("\n🚨 Some tests failed!")
		os.Exit(1)
	}
	fmt.Println("\n🎉 All tests passed!")
}

func runDir(dir string, good bool) []testResult {
	results, err := compiler.CheckFiles([]string{dir}, compiler.Options{})
	if err != nil {
		fmt.Printf("cannot read %s: %v\n", dir, err)
		os.Exit(1)
	}
	fmt.Printf("Found %d test files...\n", len(results))

	out := make([]testResult, 0, len(results))
	for _, res := range results {
		if good {
			out = append(out, checkGood(res))
		} else {
			out = append(out, checkBad(res))
		}
	}
	return out
}

func checkGood(res compiler.Result) testResult {
	tr := testResult{fileName: filepath.Base(res.Path), isGood: true, passed: res.OK}
	if !res.OK {
		// re-run to capture the rule trace of this file only
		var trace bytes.Buffer
		compiler.CheckFile(res.Path, compiler.Options{TraceOutput: &trace})
		tr.output = fmt.Sprintf("Expected success but got: %v\n%s", res.Err, trace.String())
	}
	return tr
}

func checkBad(res compiler.Result) testResult {
	name := filepath.Base(res.Path)
	tr := testResult{fileName: name}

	want, ok := expectedKinds[strings.TrimSuffix(name, filepath.Ext(name))]
	ce := res.CompilationError()
	switch {
	case !ok:
		tr.output = "No expected error kind for this file name."
	case res.OK:
		tr.output = "Expected failure but got success."
	case ce == nil:
		tr.output = fmt.Sprintf("Failed, but not with a compilation error: %v", res.Err)
	case ce.Kind != want:
		tr.output = fmt.Sprintf("Expected %s, got %s on line %d", want, ce.Kind, ce.Token.Line)
	default:
		tr.passed = true
	}
	return tr
}
