package integration_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

func TestCompilerEngine_Integration(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "bayes", "testdata", "alarm.xml"))
	if err != nil {
		t.Fatal(err)
	}

	network, err := bayes.NewCompiler().Compile(bayes.FormatXMLBIF, string(raw))
	if err != nil {
		t.Fatal(err)
	}

	p, err := bayes.NewEngine().Run(network, bayes.Query{
		Variable: "Burglary",
		Outcome:  "T",
		Evidence: []bayes.Evidence{{Variable: "JohnCalls", Outcome: "T"}, {Variable: "MaryCalls", Outcome: "T"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-0.2841718) > 1e-6 {
		t.Fatalf("expected 0.2841718, got %v", p)
	}
}
