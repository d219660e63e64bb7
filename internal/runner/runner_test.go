package runner

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"sst/internal/errors"
)

type fixtureCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Exit   int    `yaml:"exit"`
	Error  string `yaml:"error"`
}

type fixtureFile struct {
	Cases []fixtureCase `yaml:"cases"`
}

func loadFixtures(t *testing.T) []fixtureCase {
	t.Helper()
	data, err := os.ReadFile("testdata/programs.yaml")
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		t.Fatalf("parsing fixtures: %v", err)
	}
	if len(f.Cases) == 0 {
		t.Fatal("fixture file has no cases")
	}
	return f.Cases
}

func TestPrograms(t *testing.T) {
	for _, tc := range loadFixtures(t) {
		t.Run(tc.Name, func(t *testing.T) {
			var out bytes.Buffer
			res := Run(tc.Source, &out)

			if out.String() != tc.Output {
				t.Errorf("output %q, want %q", out.String(), tc.Output)
			}
			if res.ExitCode != tc.Exit {
				t.Errorf("exit %d, want %d (err: %v)", res.ExitCode, tc.Exit, res.Err)
			}

			if tc.Exit == 0 {
				if res.Err != nil {
					t.Errorf("unexpected error: %v", res.Err)
				}
				if res.Mem.Outstanding != 0 {
					t.Errorf("outstanding allocations: %d, want 0", res.Mem.Outstanding)
				}
				return
			}

			serr, ok := res.Err.(*errors.Error)
			if !ok {
				t.Fatalf("expected *errors.Error, got %T", res.Err)
			}
			if string(serr.Code) != tc.Error {
				t.Errorf("code %s, want %s", serr.Code, tc.Error)
			}
			if serr.Line == 0 {
				t.Error("diagnostic is missing a position")
			}
		})
	}
}

func TestDiagnosticCarriesSourceLine(t *testing.T) {
	var out bytes.Buffer
	res := Run("let int x = 5;\nlet float x = 1.0;\n", &out)
	serr := res.Err.(*errors.Error)
	if serr.Source != "let float x = 1.0;" {
		t.Errorf("source line %q", serr.Source)
	}
	if serr.Line != 2 {
		t.Errorf("line %d, want 2", serr.Line)
	}
}

func TestCheckDoesNotExecute(t *testing.T) {
	// Check accepts a valid program without producing output.
	if err := Check(`print("side effect");`); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	// And rejects an invalid one.
	err := Check("const int c = 1; c = 2;")
	if err == nil {
		t.Fatal("expected type error")
	}
	if serr := err.(*errors.Error); serr.Code != errors.AssignToConst {
		t.Errorf("code %s, want AssignToConst", serr.Code)
	}
}

func TestSessionKeepsBindings(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)
	defer s.Close()

	if err := s.Eval("let int counter = 1;"); err != nil {
		t.Fatalf("first input: %v", err)
	}
	if err := s.Eval("counter = counter + 1;"); err != nil {
		t.Fatalf("second input: %v", err)
	}
	if err := s.Eval("print(counter);"); err != nil {
		t.Fatalf("third input: %v", err)
	}
	if out.String() != "2\n" {
		t.Errorf("output %q, want %q", out.String(), "2\n")
	}

	// Static errors surface per input without killing the session.
	if err := s.Eval("counter = true;"); err == nil {
		t.Error("expected type error")
	}
	if err := s.Eval("print(counter);"); err != nil {
		t.Errorf("session unusable after error: %v", err)
	}
}
