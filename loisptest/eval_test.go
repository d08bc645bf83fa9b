package loisptest

import "testing"

func TestArithmetic(t *testing.T) {
	tests := TestSuite{
		{Name: "add", Source: `(print (+ 34 35))`, Stdout: "69\n"},
		{Name: "sub", Source: `(print (- 10 4))`, Stdout: "6\n"},
		{Name: "mul", Source: `(print (* 6 7))`, Stdout: "42\n"},
		{Name: "div", Source: `(print (/ 10 3))`, Stdout: "3\n"},
		{Name: "mod", Source: `(print (% 10 3))`, Stdout: "1\n"},
		{Name: "negative", Source: `(print (- 0 69))`, Stdout: "-69\n"},
		{Name: "negative-literal", Source: `(print -42)`, Stdout: "-42\n"},
		{Name: "hex-literal", Source: `(print 0x10)`, Stdout: "16\n"},
		{Name: "char-literal", Source: `(print 'A')`, Stdout: "65\n"},
		{Name: "nested", Source: `(print (* (+ 1 2) (- 9 4)))`, Stdout: "15\n"},
	}
	RunTestSuite(t, tests)
}

func TestComparison(t *testing.T) {
	tests := TestSuite{
		{Name: "eq-true", Source: `(print (= 3 3))`, Stdout: "1\n"},
		{Name: "eq-false", Source: `(print (= 3 4))`, Stdout: "0\n"},
		{Name: "ne", Source: `(print (!= 3 4))`, Stdout: "1\n"},
		{Name: "lt-signed", Source: `(print (< -1 0))`, Stdout: "1\n"},
		{Name: "gt", Source: `(print (> 5 2))`, Stdout: "1\n"},
		{Name: "le", Source: `(print (<= 5 5))`, Stdout: "1\n"},
		{Name: "ge", Source: `(print (>= 4 5))`, Stdout: "0\n"},
	}
	RunTestSuite(t, tests)
}

func TestBitwise(t *testing.T) {
	tests := TestSuite{
		{Name: "shl", Source: `(print (<< 1 4))`, Stdout: "16\n"},
		{Name: "shr", Source: `(print (>> 110 3))`, Stdout: "13\n"},
		{Name: "and", Source: `(print (& 12 10))`, Stdout: "8\n"},
		{Name: "or", Source: `(print (| 12 10))`, Stdout: "14\n"},
		{Name: "not-zero", Source: `(print (! 0))`, Stdout: "1\n"},
		{Name: "not-nonzero", Source: `(print (! 7))`, Stdout: "0\n"},
	}
	RunTestSuite(t, tests)
}

func TestControlFlow(t *testing.T) {
	tests := TestSuite{
		{
			Name: "while-count",
			Source: `(setvar x 0)
				(while (!= (getvar x) 3)
					(print (getvar x))
					(chvar x (+ (getvar x) 1)))`,
			Stdout: "0\n1\n2\n",
		},
		{Name: "if-then", Source: `(if 1 (print 10) (block))`, Stdout: "10\n"},
		{Name: "if-else", Source: `(if 0 (print 10) (block))`, Stdout: ""},
		{Name: "if-else-taken", Source: `(if 0 (print 10) (print 20))`, Stdout: "20\n"},
		{Name: "block-value", Source: `(print (block (print 1) (+ 2 3)))`, Stdout: "1\n5\n"},
		{
			Name: "nested-while",
			Source: `(setvar i 0)
				(while (< (getvar i) 2)
					(setvar j 0)
					(while (< (getvar j) 2)
						(print (+ (* (getvar i) 2) (getvar j)))
						(chvar j (+ (getvar j) 1)))
					(chvar i (+ (getvar i) 1)))`,
			Stdout: "0\n1\n2\n3\n",
		},
	}
	RunTestSuite(t, tests)
}

func TestMemory(t *testing.T) {
	tests := TestSuite{
		{
			Name: "store-load",
			Source: `(alloc buf 8)
				(store64 (getmem buf) 42)
				(print (load64 (getmem buf)))`,
			Stdout: "42\n",
		},
		{
			Name: "store8-narrowing",
			Source: `(alloc buf 8)
				(store8 (getmem buf) 300)
				(print (load8 (getmem buf)))`,
			Stdout: "44\n",
		},
		{
			Name: "ptrto",
			Source: `(setvar x 7)
				(store64 (ptrto x) 9)
				(print (getvar x))`,
			Stdout: "9\n",
		},
		{
			Name: "var-slots-independent",
			Source: `(setvar a 1)
				(setvar b 2)
				(print (getvar a))
				(print (getvar b))`,
			Stdout: "1\n2\n",
		},
	}
	RunTestSuite(t, tests)
}

func TestFunctions(t *testing.T) {
	tests := TestSuite{
		{
			Name: "square",
			Source: `(defun sq (setvar n 0) (pop n) (* (getvar n) (getvar n)))
				(print (call sq 7))`,
			Stdout: "49\n",
		},
		{
			Name: "two-arguments",
			Source: `(defun sub2 (setvar a 0) (setvar b 0) (pop b) (pop a) (- (getvar a) (getvar b)))
				(print (call sub2 10 4))`,
			Stdout: "6\n",
		},
		{
			Name: "call-by-name",
			Source: `(defun sq (setvar n 0) (pop n) (* (getvar n) (getvar n)))
				(print (sq 6))`,
			Stdout: "36\n",
		},
		{
			Name: "arity-mismatch",
			Source: `(defun sq (setvar n 0) (pop n) (* (getvar n) (getvar n)))
				(print (call sq 7 8))`,
			Err: "type error",
		},
	}
	RunTestSuite(t, tests)
}

func TestMacros(t *testing.T) {
	tests := TestSuite{
		{Name: "constant", Source: `(macro N 5) (print (expand N))`, Stdout: "5\n"},
		{
			Name:   "head-expansion",
			Source: `(macro greet (print 1) (print 2)) (greet)`,
			Stdout: "1\n2\n",
		},
		{
			Name:   "recursion",
			Source: `(macro A (expand A)) (expand A)`,
			Err:    "macro recursion",
		},
		{
			Name:   "mutual-recursion",
			Source: `(macro A (expand B)) (macro B (expand A)) (expand A)`,
			Err:    "macro recursion",
		},
	}
	RunTestSuite(t, tests)
}

func TestEnumeration(t *testing.T) {
	tests := TestSuite{
		{
			Name: "increment-returns-previous",
			Source: `(print (increment 2))
				(print (increment 3))
				(print (reset))
				(print (increment 1))`,
			Stdout: "0\n2\n5\n0\n",
		},
		{
			Name:   "macro-counter",
			Source: `(macro next (increment 1)) (print (expand next)) (print (expand next)) (print (expand next))`,
			Stdout: "0\n1\n2\n",
		},
	}
	RunTestSuite(t, tests)
}

func TestStrings(t *testing.T) {
	tests := TestSuite{
		{
			Name:   "write",
			Source: `(syscall 1 1 (castint "hi\n") 3)`,
			Stdout: "hi\n",
		},
		{
			Name: "var-of-string",
			Source: `(setvar s "abc\n")
				(syscall 1 1 (castint (getvar s)) 4)`,
			Stdout: "abc\n",
		},
		{
			Name: "load-through-pointer",
			Source: `(print (load8 (castptr "A")))`,
			Stdout: "65\n",
		},
	}
	RunTestSuite(t, tests)
}

func TestDiagnostics(t *testing.T) {
	tests := TestSuite{
		{Name: "add-string", Source: `(+ 1 "s")`, Err: "type error"},
		{Name: "unknown-head", Source: `(frobnicate 1)`, Err: "unknown instruction"},
		{Name: "redefinition", Source: `(setvar x 1) (setvar x 2)`, Err: "redefinition"},
		{Name: "unknown-variable", Source: `(print (getvar nope))`, Err: "variable not found"},
		{Name: "chvar-kind", Source: `(setvar x 1) (chvar x "s")`, Err: "type error"},
		{Name: "syscall-arity", Source: `(syscall 1 1 1 1 1 1 1 1)`, Err: "at most 6"},
		{Name: "pop-at-top-level", Source: `(setvar x 0) (pop x)`, Err: "type error"},
		{Name: "bare-word", Source: `(print (getvar "x"))`, Err: "must be a word"},
		{Name: "unmatched-paren", Source: `(print 1))`, Err: "unmatched parenthesis"},
		{Name: "division-by-zero", Source: `(print (/ 1 0))`, Err: "division by zero"},
	}
	RunTestSuite(t, tests)
}
